package cli

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jottty/jottty/internal/journal"
)

// ViewOptions holds flags for the view command.
type ViewOptions struct {
	*RootOptions
	Color string // "auto" | "always" | "never"
}

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "view [YYYY-MM-DD]",
		Short: "Show the notes of a day",
		Long: `Show the notes of a day as a markdown page. Defaults to today.

Example:
  jottty view
  jottty view 2026-10-14`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			date := ""
			if len(args) == 1 {
				date = args[0]
			}
			return runView(opts, date, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Color, "color", "auto", "colorize output (auto|always|never)")

	return cmd
}

func runView(opts *ViewOptions, date string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if date != "" {
		if _, err := journal.ParseDate(date); err != nil {
			_ = formatter.Error(ErrCodeArgument, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid date", err)
		}
	}

	app, err := opts.openApp(cmd.Context())
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer app.Close()

	if date == "" {
		date = app.Journal.Today()
	}
	page, err := app.Journal.Page(cmd.Context(), date)
	if err != nil {
		return formatter.Fail("failed to load page", err)
	}

	text := journal.Render(page, opts.Config.Bullet)
	if opts.useColor(cmd) {
		text = colorizePage(text, opts.Config.Bullet)
	}
	return formatter.SuccessText(page, text)
}

// useColor resolves the --color flag. "auto" colors only a terminal stdout.
func (opts *ViewOptions) useColor(cmd *cobra.Command) bool {
	switch opts.Color {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && f == os.Stdout && !color.NoColor
}

// colorizePage paints the heading and the bullets of a rendered page.
func colorizePage(text, bullet string) string {
	if bullet == "" {
		bullet = "-"
	}
	heading := color.New(color.Bold, color.FgCyan)
	mark := color.New(color.FgYellow)
	heading.EnableColor()
	mark.EnableColor()

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "# "):
			lines[i] = heading.Sprint(line)
		case strings.HasPrefix(line, bullet+" "):
			lines[i] = mark.Sprint(bullet) + line[len(bullet):]
		}
	}
	return strings.Join(lines, "\n")
}
