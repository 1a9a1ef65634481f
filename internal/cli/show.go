package cli

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/jottty/jottty/internal/datom"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <entity-id>...",
		Short: "Show the stored attributes of entities",
		Long: `Show the stored attributes of entities as tables.

An id that was never written shows as an empty entity.

Example:
  jottty show page:2026-10-14
  jottty show block:2026-10-14-1791970200000000000 --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runShow(opts *RootOptions, ids []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	app, err := opts.openApp(cmd.Context())
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer app.Close()

	entities := make([]datom.Entity, 0, len(ids))
	for _, id := range ids {
		e, err := app.Backend.Load(cmd.Context(), id)
		if err != nil {
			return formatter.Fail(fmt.Sprintf("failed to load %s", id), err)
		}
		entities = append(entities, e)
	}

	return formatter.SuccessText(entities, formatEntities(entities))
}

// formatEntities renders each entity as a heading and a markdown table of
// its attributes in key order.
func formatEntities(entities []datom.Entity) string {
	sb := &strings.Builder{}
	for i, e := range entities {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(sb, "## %s\n\n", e.ID)
		if e.IsEmpty() {
			sb.WriteString("_No attributes_\n")
			continue
		}

		table := tablewriter.NewTable(sb,
			tablewriter.WithRenderer(renderer.NewMarkdown()),
			tablewriter.WithAlignment([]tw.Align{tw.AlignNone, tw.AlignNone}),
			tablewriter.WithHeaderAutoFormat(tw.Off),
		)
		table.Header([]string{"attribute", "value"})
		for _, a := range e.Attrs.SortedKeys() {
			table.Append([]string{a, datom.Text(e.Attrs[a])})
		}
		table.Render()
	}
	return sb.String()
}
