package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voxdemo/internal/samplegen"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	force bool
	rpm   int

	generateCmd = &cobra.Command{
		Use:     "generate",
		Short:   "Generate the sample audio files",
		Long:    paragraph(fmt.Sprintf("\n%s the sample MP3s served by voxdemo serve. Existing files are kept unless --force is given.", keyword("Synthesize"))),
		Example: paragraph("voxdemo generate\nvoxdemo generate --force --static-dir ./static"),
		Args:    cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			logToStderr()
			_ = viper.BindPFlag("server.static_dir", cmd.Flags().Lookup("static-dir"))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			dir := expandPath(viper.GetString("server.static_dir"))
			synth := samplegen.NewGoogleTTS(samplegen.WithRequestsPerMinute(rpm))
			report, err := samplegen.New(dir, synth, samplegen.WithForce(force)).Generate(ctx)
			if err != nil {
				return err
			}

			if report.Skipped {
				fmt.Println("Audio files already exist in", dir)
			} else {
				fmt.Println("Wrote audio files to", dir)
			}
			for _, f := range report.Files {
				note := ""
				if f.Placeholder {
					note = " (placeholder)"
				}
				fmt.Printf("  %s %s%s\n", keyword(f.Name), f.HumanSize(), note)
			}
			log.Debug("generate finished", "files", len(report.Files), "skipped", report.Skipped)
			return nil
		},
	}
)

func init() {
	generateCmd.Flags().BoolVarP(&force, "force", "f", false, "regenerate files that already exist")
	generateCmd.Flags().IntVar(&rpm, "rate", 50, "synthesis requests per minute (0 disables limiting)")
	generateCmd.Flags().String("static-dir", "static", "directory to write the audio files to")
}
