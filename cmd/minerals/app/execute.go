package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/waajacu/minerals/cmd/minerals/cmd/deps"
	"github.com/waajacu/minerals/cmd/minerals/cmd/list"
	"github.com/waajacu/minerals/cmd/minerals/cmd/serve"
	"github.com/waajacu/minerals/cmd/minerals/cmd/sweep"
	"github.com/waajacu/minerals/cmd/minerals/cmd/validate"
)

// Execute runs the CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "minerals",
		Short:   "Localized minerals catalog",
		Version: a.version,
		Long: `Minerals serves a multilingual catalog of mineral records stored as
one folder per record on disk.

Operators upload a photo, review the AI suggested fields and publish; the
record is translated into every supported language at publish time.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands:"})

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is ./.minerals.yaml or $HOME/.minerals.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml, wide")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("data-root", "", "data directory; records live in <data-root>/minerals")

	rootCmd.SetVersionTemplate("minerals {{.Version}}\n")

	rootCmd.AddCommand(serve.NewCommand(a))
	rootCmd.AddCommand(list.NewCommand(a))
	rootCmd.AddCommand(validate.NewCommand(a))
	rootCmd.AddCommand(sweep.NewCommand(a))
	rootCmd.AddCommand(deps.NewCommand(a))
	rootCmd.AddCommand(a.newVersionCommand())

	return rootCmd
}

// setupCommand applies persistent flags and rebuilds the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if file := mustGetString(cmd, "config"); file != "" {
		// Reload so file values sit below flags and environment.
		_ = os.Setenv("MINERALS_CONFIG", file)
		config, err := LoadConfig()
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		mustGetString(cmd, "format"),
		mustGetString(cmd, "log-level"),
		mustGetString(cmd, "data-root"),
	)

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: "management",
		Short:   "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("minerals %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}

// ExitOnError prints err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a flag defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a flag defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
