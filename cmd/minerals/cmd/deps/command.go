// Package deps provides the deps command.
package deps

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waajacu/minerals/internal/appcontext"
	"github.com/waajacu/minerals/internal/cmd/output"
	"github.com/waajacu/minerals/internal/deps"
)

// NewCommand creates the deps command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "deps",
		GroupID: "management",
		Short:   "Check the external programs used for report PDFs",
		Long: `Deps looks up latexmk and XeLaTeX on PATH and reports their versions.
Without them the service still writes report.html and report.tex, and the
PDF endpoint answers 502 with those artifacts.`,
		Example: `  minerals deps
  minerals deps -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, deps.PDFToolchain())
		},
	}
}

func run(cmd *cobra.Command, app appcontext.Interface, list []deps.Dependency) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	format = output.DetectFormat(string(format))

	statuses := deps.CheckAll(cmd.Context(), list)
	for _, s := range statuses {
		app.Logger().Debug().Str("program", s.Dependency.Name).Bool("available", s.Available).Str("path", s.Path).Msg("Dependency checked")
	}

	var data any = statuses
	if format.IsTable() {
		data = output.DependenciesTable(statuses)
	}
	if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), data); err != nil {
		return err
	}
	if deps.MissingRequired(statuses) {
		return fmt.Errorf("required programs are missing")
	}
	return nil
}
