// Package list provides the list command.
package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waajacu/minerals/internal/appcontext"
	"github.com/waajacu/minerals/internal/catalog"
	"github.com/waajacu/minerals/internal/cmd/output"
	"github.com/waajacu/minerals/internal/matcher"
	"github.com/waajacu/minerals/pkg/i18n"
)

// NewCommand creates the list command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		GroupID: "core",
		Short:   "List the catalog in one language",
		Long: `List prints every record in the data root, resolved for one language
the same way the HTTP service resolves it.`,
		Example: `  minerals list
  minerals list --lang de
  minerals list --lang ar --format json
  minerals list -o wide
  minerals list --match quartz
  minerals list --match 'record.silicates.*'
  minerals list --match '^(calcite|quartz)$'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lang, _ := cmd.Flags().GetString("lang")
			match, _ := cmd.Flags().GetString("match")
			return run(cmd, app, lang, match)
		},
	}
	cmd.Flags().StringP("lang", "l", "", "language code (default: DEFAULT_LANG)")
	cmd.Flags().StringP("match", "m", "", "only list records whose id, name or family match (glob or regex)")
	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, langFlag, pattern string) error {
	lang := app.DefaultLanguage()
	if langFlag != "" {
		code, ok := i18n.ParseCode(langFlag)
		if !ok {
			return fmt.Errorf("unsupported language %q (supported: %v)", langFlag, i18n.Codes())
		}
		lang = code
	}

	var filter *matcher.Matcher
	if pattern != "" {
		m, err := matcher.New(matcher.Auto, pattern)
		if err != nil {
			return err
		}
		filter = m
	}

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	format = output.DetectFormat(string(format))

	cat, err := catalog.New(app.Store()).Get(cmd.Context(), lang)
	if err != nil {
		return err
	}
	app.Logger().Debug().Str("lang", string(lang)).Int("minerals", cat.Len()).Msg("Catalog loaded")

	items := cat.List()
	if filter != nil {
		items = filter.Filter(items)
	}

	var data any = items
	if format.IsTable() {
		data = output.MineralsTable(items, format == output.FormatWide)
	}
	return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
}
