package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sheetbridge/sheetbridge/internal/errfmt"
)

type rootFlags struct {
	ConfigPath string
	Verbose    bool
}

func Execute(args []string) error {
	flags := rootFlags{}

	// Avoid dangerous prefix-matching for commands (future-proofing).
	cobra.EnablePrefixMatching = false

	if hasExactArg(args, "--version") {
		fmt.Fprintln(os.Stdout, VersionString())
		return nil
	}

	root := &cobra.Command{
		Use:           "sheetbridge",
		Short:         "Bridge between Google Sheets and your local workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Example: strings.TrimSpace(`
  # One-time setup: put your OAuth client in the environment or config
  export GOOGLE_CLIENT_ID=...
  export GOOGLE_CLIENT_SECRET=...

  # Run the REST wrapper
  sheetbridge serve

  # Browse your spreadsheets in the terminal
  sheetbridge browse

  # Session helpers
  sheetbridge auth status
  sheetbridge auth logout
`),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logLevel := slog.LevelWarn
			if flags.Verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})))
			return nil
		},
	}

	root.SetArgs(args)
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Config file path (default ~/.config/sheetbridge/config.toml)")
	root.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")

	root.AddCommand(newServeCmd(&flags))
	root.AddCommand(newBrowseCmd(&flags))
	root.AddCommand(newAuthCmd(&flags))
	root.AddCommand(newVersionCmd())

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		// pflag already includes helpful context ("unknown flag", ...).
		return newUsageError(err)
	})

	err := root.Execute()
	if err == nil {
		return nil
	}
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}

	if ExitCode(err) == 1 && isUsageError(err) {
		err = &ExitError{Code: 2, Err: err}
	}

	printError(errfmt.Format(err))
	return err
}

func printError(msg string) {
	out := termenv.NewOutput(os.Stderr)
	fmt.Fprintln(os.Stderr, out.String(msg).Foreground(out.Color("1")))
}

func hasExactArg(args []string, target string) bool {
	for _, a := range args {
		if a == target {
			return true
		}
	}
	return false
}

// newUsageError wraps errors in a way main() can map to exit code 2.
func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	// Preserve pflag.ErrHelp (should not be treated as failure).
	if errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return &ExitError{Code: 2, Err: err}
}

func isUsageError(err error) bool {
	msg := strings.TrimSpace(err.Error())
	switch {
	case strings.HasPrefix(msg, "accepts "),
		strings.HasPrefix(msg, "requires "),
		strings.HasPrefix(msg, "unknown command"),
		strings.HasPrefix(msg, "invalid argument"),
		strings.HasPrefix(msg, "unknown flag"),
		strings.HasPrefix(msg, "unknown shorthand flag"):
		return true
	default:
		return false
	}
}
