package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# glamour style name or JSON path for the context view (default "auto")
style: "auto"
# mouse support (TUI-mode only)
mouse: false
# word-wrap the context view at width
width: 80

reader:
  enabled: true
  # reading speed in words per minute (60 to 1200)
  wpm: 350
  # the first words of a session speed up from ramp_start_factor of the
  # target speed along a curve with exponent ramp_curve_exp
  ramp_words: 12
  ramp_start_factor: 0.5
  ramp_curve_exp: 0.7
  # dwell multipliers for the last word before the reply box opens, sentence
  # ends and commas
  dwell_compose_mult: 2.0
  sentence_pause_mult: 1.6
  comma_pause_mult: 1.25
  # words of at least long_len_1 letters are shown long_mul_1 times longer,
  # words of at least long_len_2 letters long_mul_2 times
  long_len_1: 10
  long_mul_1: 1.25
  long_len_2: 7
  long_mul_2: 1.1
  # how often a growing text is re-read
  stream_throttle: "80ms"
  # hold back the last word of a growing text until it is complete
  stable_tokenize: true
  # do not jump to short greeting messages in a conversation
  suppress_greeting: true
  # words skipped by back and forward
  step_words: 10
  # wpm change of faster and slower
  speed_step: 10
  # default, dark-red, dark-blue, sepia, paper or auto
  theme: "default"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the wordrunner config file",
	Long:    paragraph(fmt.Sprintf("\n%s the wordrunner config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("wordrunner config\nwordrunner config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Wordrunner", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
