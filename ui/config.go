package ui

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint   `env:"WORDRUNNER_GLAMOUR_MAX_WIDTH" envDefault:"100"`
	GlamourStyle    string `env:"GLAMOUR_STYLE"                envDefault:"auto"`
	EnableMouse     bool   `env:"WORDRUNNER_MOUSE"`

	// Title shown before the first word, usually the source name.
	Title string

	// InputTTY reads keys from the terminal when stdin carries the text.
	InputTTY bool

	// For debugging the UI
	AltScreen bool `env:"WORDRUNNER_ALT_SCREEN" envDefault:"true"`
	HideHelp  bool `env:"WORDRUNNER_HIDE_HELP"`
}
