// Package main provides the entry point for the wordrunner CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/internal/metrics"
	"github.com/dgnsrekt/wordrunner/internal/settings"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/ui"
	"github.com/dgnsrekt/wordrunner/utils"
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

	configFile        string
	defaultConfigFile string
	plain             bool
	follow            bool
	compose           bool
	style             string
	width             uint
	mouse             bool
	noStable          bool
	noSuppress        bool
	remember          bool
	metricsAddr       string

	rootCmd = &cobra.Command{
		Use:   "wordrunner [FILE|DIR|-|ws://URL]",
		Short: "Speed-read text one word at a time",
		Long: paragraph(
			fmt.Sprintf("\nRead text %s, following it as it grows.", keyword("one word at a time")),
		),
		Example: paragraph(
			"wordrunner notes.md\n" +
				"llm chat | wordrunner\n" +
				"wordrunner --compose ./conversation\n" +
				"wordrunner ws://localhost:8080/chat",
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style = utils.ExpandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")

	if noStable {
		viper.Set(rsvp.KeyStableTokenize, false)
	}
	if noSuppress {
		viper.Set(rsvp.KeySuppressGreeting, false)
	}

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	// Without a terminal there is nothing to draw on, print the words instead
	if !isTerminal && !cmd.Flags().Changed("plain") {
		plain = true
	}
	if plain && compose {
		return errors.New("cannot compose replies in plain mode")
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

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	// if stdin is a pipe then use stdin for input. note that you can also
	// explicitly use a - to read from stdin.
	if arg == "" {
		if yes, err := stdinIsPipe(); err != nil {
			return err
		} else if yes {
			arg = "-"
		}
	}

	// the TUI always follows its input, plain output only when asked to
	in, err := inputFromArg(arg, follow || !plain)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store := settings.New(viper.GetViper())
	used := viper.ConfigFileUsed()
	if used != "" {
		store.Watch()
	} else {
		used = defaultConfigFile
	}
	if remember && used != "" {
		store.PersistTo(used)
	}

	var m *metrics.Metrics
	if metricsAddr != "" {
		m = metrics.New("wordrunner")
		go func() {
			if err := m.Serve(ctx, metricsAddr); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	if plain {
		return runPlain(ctx, in, store, m, os.Stdout)
	}
	return runTUI(ctx, in, store, m)
}

func runTUI(ctx context.Context, in *input, store rsvp.SettingsStore, m *metrics.Metrics) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the flag if unset
	if err := validateStyle(cfg.GlamourStyle); err != nil || cfg.GlamourStyle == styles.AutoStyle {
		cfg.GlamourStyle = style
	}

	cfg.Title = in.title
	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.InputTTY = in.stdin

	screen := ui.NewScreen()
	a := newApp(in, screen, store, m, compose)

	r := ui.Reader{
		Loop:     a.loop,
		Player:   a.player,
		Settings: store,
		Screen:   screen,
		Adapter:  a.adapter,
		Selector: a.selector,
	}
	if in.conv != nil {
		r.Sources = in.conv
	}
	p := ui.NewProgram(cfg, r)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.start(ctx, func(err error) {
		if err != nil {
			p.Send(ui.FatalError(err))
		}
	}, nil)

	// Run Bubble Tea program
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	_ = closer()
	if err != nil {
		os.Exit(1)
	}
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
	rootCmd.Flags().BoolVarP(&plain, "plain", "p", false, "print one word per line instead of running the TUI")
	rootCmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep reading as the input grows (always on in the TUI)")
	rootCmd.Flags().BoolVarP(&compose, "compose", "c", false, "open the reply box when the text ends")
	rootCmd.Flags().Int("wpm", rsvp.DefaultConfig().WordsPerMinute, "reading speed in words per minute")
	rootCmd.Flags().String("theme", rsvp.DefaultConfig().Theme, "color theme ("+strings.Join(rsvp.Themes, ", ")+" or auto)")
	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path for the context view")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap the context view at width")
	rootCmd.Flags().BoolVar(&noStable, "no-stable", false, "show a growing text's last word before it is complete")
	rootCmd.Flags().BoolVar(&noSuppress, "no-greeting-suppression", false, "follow short greeting messages in a conversation")
	rootCmd.Flags().BoolVar(&remember, "remember", false, "save speed and theme changes to the config file")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag(rsvp.KeyWordsPerMinute, rootCmd.Flags().Lookup("wpm"))
	_ = viper.BindPFlag(rsvp.KeyTheme, rootCmd.Flags().Lookup("theme"))
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	rsvp.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "wordrunner")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "wordrunner")}, dirs...)
	}

	if c := os.Getenv("WORDRUNNER_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("wordrunner")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("wordrunner")
	// WORDRUNNER_READER_WPM sets reader.wpm
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
		configFile = filepath.Join(dirs[0], "wordrunner.yml")
		defaultConfigFile = configFile
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
