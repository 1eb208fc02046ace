package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voxdemo/internal/server"
	"github.com/dgnsrekt/voxdemo/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sample backend",
	Long: paragraph(fmt.Sprintf("\n%s the language catalog and voice samples over HTTP. "+
		"Samples are kept in Redis when server.redis_url is set, in memory otherwise.", keyword("Serve"))),
	Example: paragraph("voxdemo serve\nvoxdemo serve --port 9000 --redis-url redis://localhost:6379/0"),
	Args:    cobra.NoArgs,
	PreRunE: func(*cobra.Command, []string) error {
		logToStderr()
		// .env values never override the real environment
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("could not load .env", "error", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func serverConfig() server.Config {
	return server.Config{
		Host:           viper.GetString("server.host"),
		Port:           viper.GetInt("server.port"),
		StaticDir:      expandPath(viper.GetString("server.static_dir")),
		AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
	}
}

// publicURL is the origin seeded audio_url values point at.
func publicURL(cfg server.Config) string {
	if u := viper.GetString("server.public_url"); u != "" {
		return u
	}
	host := cfg.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + host + ":" + strconv.Itoa(cfg.Port)
}

func runServer(ctx context.Context) error {
	cfg := serverConfig()

	st, closeStore, err := store.Open(ctx, viper.GetString("server.redis_url"), publicURL(cfg))
	if err != nil {
		return fmt.Errorf("unable to open sample store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("error closing sample store", "error", err)
		}
	}()

	catalog := server.NewCatalog(server.DefaultLanguages)
	if path := viper.GetString("server.catalog_file"); path != "" {
		catalog, err = server.LoadCatalog(expandPath(path))
		if err != nil {
			return fmt.Errorf("unable to load catalog: %w", err)
		}
		go func() {
			if err := catalog.Watch(ctx); err != nil {
				log.Warn("catalog watch stopped", "error", err)
			}
		}()
	}

	if _, err := os.Stat(cfg.StaticDir); errors.Is(err, os.ErrNotExist) {
		log.Warn("static dir does not exist, run voxdemo generate", "dir", cfg.StaticDir)
	}

	srv := server.New(cfg, st, catalog, server.NewMetrics())
	return srv.Run(ctx)
}

func init() {
	serveCmd.Flags().String("host", "0.0.0.0", "address to listen on")
	serveCmd.Flags().Int("port", 8000, "port to listen on")
	serveCmd.Flags().String("static-dir", "static", "directory with the sample audio files")
	serveCmd.Flags().String("redis-url", "", "redis URL for the sample store")
	serveCmd.Flags().String("catalog", "", "YAML language catalog, reloaded on change")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.static_dir", serveCmd.Flags().Lookup("static-dir"))
	_ = viper.BindPFlag("server.redis_url", serveCmd.Flags().Lookup("redis-url"))
	_ = viper.BindPFlag("server.catalog_file", serveCmd.Flags().Lookup("catalog"))
}
