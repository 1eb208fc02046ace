package ui

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// Where downloads land, shown in the help view.
	DownloadDir string

	// For debugging the UI
	GlamourEnabled bool `env:"VOXDEMO_ENABLE_GLAMOUR" envDefault:"true"`
	HighContrast   bool `env:"VOXDEMO_HIGH_CONTRAST"`
}
