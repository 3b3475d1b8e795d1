package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/gabtab/gabtab/internal/config"
	"github.com/gabtab/gabtab/internal/script"
)

var (
	demoConfigPath string
	demoScriptPath string
	demoShowVars   bool
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Play a scripted conversation",
	Long: `Play a YAML conversation script through the dialogue box.
Without --script a built-in sample conversation is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(demoConfigPath)
		if err != nil {
			return err
		}

		logger, closeLog, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer closeLog()

		var sc script.Script
		if demoScriptPath != "" {
			sc, err = script.Load(demoScriptPath)
		} else {
			sc, err = script.Parse([]byte(sampleScript))
		}
		if err != nil {
			return err
		}

		lipgloss.SetColorProfile(termenv.ColorProfile())

		runner := script.NewRunner(sc, cfg, logger)
		final, err := tea.NewProgram(runner, tea.WithAltScreen()).Run()
		if err != nil {
			return fmt.Errorf("running conversation: %w", err)
		}
		done, ok := final.(script.Runner)
		if !ok {
			return nil
		}
		if err := done.Err(); err != nil {
			return err
		}
		if demoShowVars {
			for name, value := range done.Vars() {
				fmt.Printf("%s=%s\n", name, value)
			}
		}
		return nil
	},
}

func init() {
	demoCmd.Flags().StringVarP(&demoConfigPath, "config", "c", defaultConfigPath(), "config file")
	demoCmd.Flags().StringVarP(&demoScriptPath, "script", "s", "", "conversation script (YAML)")
	demoCmd.Flags().BoolVar(&demoShowVars, "show-vars", false, "print stored results on exit")
}

// defaultConfigPath is ~/.config/gabtab/config.yaml when resolvable.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gabtab.yaml"
	}
	return dir + "/gabtab/config.yaml"
}

// newLogger builds the demo logger from config. The returned closer
// is a no-op for stderr logging.
func newLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeLog := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeLog = func() { f.Close() }
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return logger, closeLog, nil
}

// sampleScript is played when no --script is given.
const sampleScript = `
name: sample
steps:
  - say:
      - "Hi! I'm the gabtab demo."
      - "What's your name?"
    ask:
      kind: input
      store_as: name
      input:
        placeholder: "your name"
        max_len: 24
        required: true
  - clear: true
    say:
      - "Nice to meet you, ${name}."
      - "Pick your favorite fruits:"
    ask:
      kind: list
      store_as: fruits
      list:
        items: [apple, banana, cherry, durian, elderberry, fig, grape]
        multi_select: true
        slots: 3
        forbid: [durian]
  - clear: true
    say:
      - "${fruits}. Good choice!"
      - "One more thing: shall we do this again sometime?"
    ask:
      kind: buttons
      store_as: again
      buttons:
        - { key: "yes", label: "Sure!" }
        - { key: "no", label: "No way" }
        - { key: "maybe", label: "Maybe", disabled: true }
  - clear: true
    say:
      - "Bye!"
    pause_ms: 600
`
