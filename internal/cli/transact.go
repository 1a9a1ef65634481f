package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jottty/jottty/internal/datom"
	"github.com/jottty/jottty/internal/transact"
)

// TransactOptions holds flags for the transact command.
type TransactOptions struct {
	*RootOptions
	DryRun bool
}

// NewTransactCommand creates the transact command.
func NewTransactCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransactOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "transact [json|-]",
		Short: "Apply a batch of raw datoms",
		Long: `Apply a batch of raw datoms given as a JSON array of
[op, entity, attribute, value] tuples. Reads stdin when the argument is
"-" or missing. Supported ops are db/add and db/retract (a leading ":" is
accepted). The whole batch is applied in one transaction.

Prints the resulting snapshot of every touched entity.

Example:
  jottty transact '[["db/add","block:x","block/title","T"]]'
  echo '[[":db/retract","block:x","block/title",null]]' | jottty transact -`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransact(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "parse and print the datoms without applying them")

	return cmd
}

func runTransact(opts *TransactOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	input, err := readBatch(args, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodeArgument, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read batch", err)
	}

	raws, err := transact.DecodeTuples(input)
	if err != nil {
		return formatter.Fail("invalid batch", err)
	}

	if opts.DryRun {
		datoms, err := transact.ParseBatch(raws)
		if err != nil {
			return formatter.Fail("invalid batch", err)
		}
		tuples := make([][]any, len(datoms))
		for i, d := range datoms {
			tuples[i] = transact.FormatTuple(d)
		}
		return formatter.SuccessText(tuples, formatDatoms(datoms))
	}

	app, err := opts.openApp(cmd.Context())
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer app.Close()

	entities, err := app.Gateway.Transact(cmd.Context(), raws)
	if err != nil {
		return formatter.Fail("transaction failed", err)
	}
	formatter.VerboseLog("Applied %d datoms to %d entities", len(raws), len(entities))

	return formatter.SuccessText(entities, formatEntities(entities))
}

func readBatch(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return []byte(args[0]), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("no datoms given")
	}
	return data, nil
}

func formatDatoms(datoms []datom.Datom) string {
	var sb strings.Builder
	for _, d := range datoms {
		fmt.Fprintf(&sb, "%s %s %s %s\n", d.Op, d.E, d.A, datom.Text(d.V))
	}
	return sb.String()
}
