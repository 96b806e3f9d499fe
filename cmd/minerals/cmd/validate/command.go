// Package validate provides the validate command.
package validate

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/waajacu/minerals/internal/appcontext"
	"github.com/waajacu/minerals/internal/cmd/output"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/i18n"
)

// LanguageResult is the scan outcome for one language.
type LanguageResult struct {
	Language i18n.Code `json:"language"`
	Records  int       `json:"records"`
	Skipped  int       `json:"skipped"`
}

// Report is the validate command output.
type Report struct {
	DataDir   string           `json:"data_dir"`
	Languages []LanguageResult `json:"languages"`
	Problems  []store.Skip     `json:"problems"`
}

// NewCommand creates the validate command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		GroupID: "management",
		Short:   "Scan the data root and report unreadable records",
		Long: `Validate scans the record store once per supported language and lists
every folder the catalog would skip, with the reason. Folders whose name is
not a record identifier, folders without any metadata file and metadata that
fails to parse are all reported.

The command exits non-zero when problems are found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := Run(cmd, app.Store())
			if err != nil {
				return err
			}
			if err := printReport(cmd.OutOrStdout(), app.OutputFormat(), rep); err != nil {
				return err
			}
			if n := len(rep.Problems); n > 0 {
				return fmt.Errorf("%d problem(s) found in %s", n, rep.DataDir)
			}
			return nil
		},
	}
}

// Run scans st for every language. A problem that affects several
// languages is reported once.
func Run(cmd *cobra.Command, st *store.Store) (Report, error) {
	rep := Report{DataDir: st.Dir(), Problems: []store.Skip{}}
	for _, code := range i18n.Codes() {
		res, err := st.Scan(cmd.Context(), code)
		if err != nil {
			return rep, err
		}
		rep.Languages = append(rep.Languages, LanguageResult{
			Language: code,
			Records:  len(res.Minerals),
			Skipped:  len(res.Skipped),
		})
		for _, s := range res.Skipped {
			if !slices.Contains(rep.Problems, s) {
				rep.Problems = append(rep.Problems, s)
			}
		}
	}
	return rep, nil
}

func printReport(w io.Writer, explicit string, rep Report) error {
	format, err := output.ParseFormat(explicit)
	if err != nil {
		return err
	}
	format = output.DetectFormat(string(format))
	if !format.IsTable() {
		return output.NewFormatter(format).Format(w, rep)
	}

	rows := make([][]string, 0, len(rep.Languages))
	for _, l := range rep.Languages {
		rows = append(rows, []string{string(l.Language), strconv.Itoa(l.Records), strconv.Itoa(l.Skipped)})
	}
	table := output.NewFormatter(output.FormatTable)
	if err := table.Format(w, output.Data{
		Headers:         []string{"Language", "Records", "Skipped"},
		Rows:            rows,
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight, output.AlignRight},
	}); err != nil {
		return err
	}
	if len(rep.Problems) == 0 {
		_, err = fmt.Fprintf(w, "\nAll records in %s are readable.\n", rep.DataDir)
		return err
	}
	_, _ = fmt.Fprintln(w)
	return table.Format(w, output.SkipsTable(rep.Problems))
}
