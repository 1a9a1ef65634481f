package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jottty/jottty/internal/journal"
)

// AddResult is the JSON payload of the add command.
type AddResult struct {
	Page  string        `json:"page"`
	Block journal.Block `json:"block"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <note text>...",
		Short: "Add a note to today's page",
		Long: `Add a note to today's page.

The arguments are joined with spaces into one note.

Example:
  jottty add "call the landlord about the lease"
  jottty add buy milk`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(rootOpts, strings.Join(args, " "), cmd)
		},
	}

	return cmd
}

func runAdd(opts *RootOptions, text string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	app, err := opts.openApp(cmd.Context())
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer app.Close()

	block, err := app.Journal.AddNote(cmd.Context(), text)
	if errors.Is(err, journal.ErrEmptyNote) {
		_ = formatter.Error(ErrCodeArgument, err.Error(), nil)
		return WrapExitError(ExitCommandError, "nothing to add", err)
	}
	if err != nil {
		return formatter.Fail("failed to add note", err)
	}

	page := journal.PageID(journal.DateKey(block.Created))
	formatter.VerboseLog("Stored %s on %s", block.ID, page)
	return formatter.SuccessText(
		AddResult{Page: page, Block: block},
		fmt.Sprintf("Added %s to %s", block.ID, page),
	)
}
