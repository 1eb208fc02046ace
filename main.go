// Package main provides the entry point for the voxdemo CLI application.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voxdemo/internal/api"
	"github.com/dgnsrekt/voxdemo/internal/audio"
	"github.com/dgnsrekt/voxdemo/internal/cache"
	"github.com/dgnsrekt/voxdemo/internal/coordinator"
	"github.com/dgnsrekt/voxdemo/internal/download"
	"github.com/dgnsrekt/voxdemo/ui"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	style      string
	width      uint
	mouse      bool
	silent     bool
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "voxdemo",
		Short: "The most realistic voice AI platform, in your terminal",
		Long: paragraph(
			fmt.Sprintf("\nBrowse and play voice samples %s. Run %s to start the sample backend.",
				keyword("in your terminal"), keyword("voxdemo serve")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: func(*cobra.Command, []string) error {
			return runTUI()
		},
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != "auto" && styles.DefaultStyles[style] == nil {
		style = expandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	silent = viper.GetBool("audio.silent")

	level, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if v := viper.GetFloat64("audio.volume"); v < 0 || v > 1 {
		return fmt.Errorf("audio volume must be between 0 and 1, got %.2f", v)
	}
	if viper.GetDuration("api.timeout") < 0 {
		return errors.New("api timeout must not be negative")
	}
	if viper.GetString("language.default") == "" {
		return errors.New("language.default must not be empty")
	}

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	// We want to use a special no-TTY style, when stdout is not a terminal
	// and there was no specific style passed by arg
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = "notty"
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

// newCoordinator wires the backend client, audio cache, player and saver
// into a coordinator. The returned func releases the cache.
func newCoordinator() (*coordinator.Coordinator, func(), error) {
	cacheCfg := cache.DefaultConfig(cacheDir())
	if mb := viper.GetInt64("cache.memory_mb"); mb > 0 {
		cacheCfg.MemoryCapacity = mb << 20
	}
	cacheCfg.DiskCapacity = viper.GetInt64("cache.disk_mb") << 20

	audioCache, err := cache.NewManager(cacheCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open audio cache: %w", err)
	}
	cleanup := func() {
		stats := audioCache.Stats()
		log.Debug("audio cache stats",
			"memory_hits", stats.Memory.Hits,
			"disk_hits", stats.Disk.Hits,
			"promotions", stats.Promotions)
		if err := audioCache.Close(); err != nil {
			log.Warn("error closing audio cache", "error", err)
		}
	}

	timeout := viper.GetDuration("api.timeout")
	client, err := api.NewClient(viper.GetString("api.url"),
		api.WithTimeout(timeout),
		api.WithAudioCache(audioCache),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	playerOpts := []audio.Option{
		audio.WithVolume(viper.GetFloat64("audio.volume")),
		audio.WithTimeout(timeout),
	}
	if silent {
		playerOpts = append(playerOpts, audio.WithSilentOutput())
	}
	player := audio.NewPlayer(client, playerOpts...)

	saver, err := download.NewSaver(client, viper.GetString("download.dir"))
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	log.Debug("wiring coordinator",
		"api", client.BaseURL(),
		"downloads", saver.Dir(),
		"cache", cacheCfg.DiskPath,
		"silent", silent)

	c := coordinator.New(client, client, player, saver,
		coordinator.WithDefaultLanguage(viper.GetString("language.default")),
	)
	return c, cleanup, nil
}

func runTUI() error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the configured one if unset
	if err := validateStyle(cfg.GlamourStyle); err != nil {
		cfg.GlamourStyle = style
	}

	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.DownloadDir = expandPath(viper.GetString("download.dir"))

	c, cleanup, err := newCoordinator()
	if err != nil {
		return err
	}
	defer cleanup()

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, c).Run(); err != nil {
		_ = c.Close()
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func cacheDir() string {
	if dir := viper.GetString("cache.dir"); dir != "" {
		return expandPath(dir)
	}
	dir, err := gap.NewScope(gap.User, "voxdemo").CacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "voxdemo", "audio")
	}
	return filepath.Join(dir, "audio")
}

func expandPath(path string) string {
	p, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return os.ExpandEnv(p)
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("api-url", api.DefaultBaseURL, "sample backend origin")
	rootCmd.Flags().StringP("language", "l", "english", "language selected at startup")
	rootCmd.Flags().StringP("style", "s", styles.AutoStyle, "style name or JSON path")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to disable)")
	rootCmd.Flags().String("download-dir", ".", "directory downloaded samples are saved to")
	rootCmd.Flags().BoolVar(&silent, "silent", false, "simulate playback without an audio device")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("language.default", rootCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("download.dir", rootCmd.Flags().Lookup("download-dir"))
	_ = viper.BindPFlag("audio.silent", rootCmd.Flags().Lookup("silent"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("log.level", "info")

	viper.SetDefault("api.url", api.DefaultBaseURL)
	viper.SetDefault("api.timeout", "15s")
	viper.SetDefault("language.default", "english")
	viper.SetDefault("download.dir", ".")
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.memory_mb", 32)
	viper.SetDefault("cache.disk_mb", 256)
	viper.SetDefault("audio.volume", 1.0)
	viper.SetDefault("audio.silent", false)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.static_dir", "static")
	viper.SetDefault("server.public_url", "")
	viper.SetDefault("server.redis_url", "")
	viper.SetDefault("server.catalog_file", "")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	rootCmd.AddCommand(configCmd, manCmd, serveCmd, generateCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "voxdemo")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "voxdemo")}, dirs...)
	}

	if c := os.Getenv("VOXDEMO_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("voxdemo")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("voxdemo")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "voxdemo.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
