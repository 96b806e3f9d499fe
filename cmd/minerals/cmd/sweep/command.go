// Package sweep provides the sweep command.
package sweep

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/waajacu/minerals/internal/appcontext"
	"github.com/waajacu/minerals/internal/cmd/output"
	"github.com/waajacu/minerals/internal/sweep"
	"github.com/waajacu/minerals/pkg/logging"
)

// Result is the sweep command output.
type Result struct {
	Orphans []sweep.Orphan `json:"orphans"`
	Removed []string       `json:"removed"`
	Applied bool           `json:"applied"`
}

// NewCommand creates the sweep command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sweep",
		GroupID: "management",
		Short:   "Find and remove folders left by failed publishes",
		Long: `Sweep lists record folders that have no record.json and were last
modified before the age threshold. These are left behind when a publish
fails after creating its folder. Nothing is deleted unless --apply is given.

Run it while no publish is in progress, or keep the threshold well above
the longest publish.`,
		Example: `  minerals sweep
  minerals sweep --older-than 24h --apply`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			age, _ := cmd.Flags().GetDuration("older-than")
			apply, _ := cmd.Flags().GetBool("apply")
			if err := sweep.CheckAge(age, apply); err != nil {
				return fmt.Errorf("--older-than: %w", err)
			}
			return run(cmd, app, age, apply, time.Now())
		},
	}
	cmd.Flags().Duration("older-than", sweep.DefaultAge, "minimum folder age")
	cmd.Flags().Bool("apply", false, "delete the folders instead of listing them")
	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, age time.Duration, apply bool, now time.Time) error {
	st := app.Store()
	orphans, err := sweep.Find(st, age, now)
	if err != nil {
		return err
	}
	res := Result{Orphans: orphans, Removed: []string{}, Applied: apply}
	if res.Orphans == nil {
		res.Orphans = []sweep.Orphan{}
	}

	if apply && len(orphans) > 0 {
		ctx := logging.WithLogger(cmd.Context(), app.Logger())
		if res.Removed, err = sweep.Remove(ctx, orphans); err != nil {
			return err
		}
	}
	return printResult(cmd.OutOrStdout(), app.OutputFormat(), res, now)
}

func printResult(w io.Writer, explicit string, res Result, now time.Time) error {
	format, err := output.ParseFormat(explicit)
	if err != nil {
		return err
	}
	format = output.DetectFormat(string(format))
	if !format.IsTable() {
		return output.NewFormatter(format).Format(w, res)
	}

	if len(res.Orphans) == 0 {
		_, err := fmt.Fprintln(w, "No orphaned folders.")
		return err
	}
	if err := output.NewFormatter(output.FormatTable).Format(w, output.OrphansTable(res.Orphans, now)); err != nil {
		return err
	}
	if res.Applied {
		_, err = fmt.Fprintf(w, "\nRemoved %d folder(s).\n", len(res.Removed))
	} else {
		_, err = fmt.Fprintf(w, "\n%d folder(s) would be removed. Re-run with --apply to delete them.\n", len(res.Orphans))
	}
	return err
}
