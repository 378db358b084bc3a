package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/inventory"
	"tally/internal/journal"
	"tally/internal/logging"
	"tally/internal/staging"
)

func newInboundCommand(ctx *commandContext) *cobra.Command {
	var definitionID int64
	var warehouseID int64
	var stageOnly bool

	cmd := &cobra.Command{
		Use:   "inbound <quantity>",
		Short: "Stage a quantity of new items and commit them to a warehouse",
		Long: "Generate identities for a batch of identical incoming items, then " +
			"register them with the depot. With --stage-only the generated " +
			"identities are printed without creating anything, so labels can be " +
			"produced ahead of the physical delivery.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[0])
			if err != nil || quantity <= 0 {
				return fmt.Errorf("quantity must be a positive integer, got %q", args[0])
			}
			if !stageOnly && warehouseID <= 0 {
				return errors.New("--warehouse is required unless --stage-only is set")
			}

			client, err := ctx.depot()
			if err != nil {
				return err
			}
			builder := staging.NewBuilder(client, logging.NewNop())
			pending := builder.Stage(definitionID, quantity)

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(pending))
			for _, item := range pending {
				rows = append(rows, []string{item.ShortCode, item.ID})
			}
			fmt.Fprintf(out, "Staged %d items for definition %d:\n", len(pending), definitionID)
			renderTable(out, []column{{Title: "Short ID"}, {Title: "ID"}}, rows)

			if stageOnly {
				return nil
			}

			created, err := builder.Commit(cmd.Context(), inventory.NewCollection(), warehouseID)
			if err != nil {
				var commitErr *staging.CommitError
				if errors.As(err, &commitErr) {
					fmt.Fprintf(out, "Created %d of %d items; %d failed:\n",
						len(created), len(pending), len(commitErr.Failures))
					for _, failure := range commitErr.Failures {
						fmt.Fprintf(out, "  %s: %v\n", failure.Pending.ShortCode, failure.Err)
					}
					fmt.Fprintln(out, "Failed items remain staged; rerun to retry them.")
				}
				return err
			}

			ctx.recordJournal(cmd.Context(), journal.Entry{
				At:      time.Now(),
				Action:  journal.ActionCommit,
				Outcome: journal.OutcomeOK,
				Detail:  fmt.Sprintf("%d items to warehouse %d", len(created), warehouseID),
			})
			fmt.Fprintf(out, "Created %d items in warehouse %d.\n", len(created), warehouseID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&definitionID, "definition", 0, "Item definition id (required)")
	cmd.Flags().Int64Var(&warehouseID, "warehouse", 0, "Warehouse receiving the items")
	cmd.Flags().BoolVar(&stageOnly, "stage-only", false, "Print generated identities without creating items")
	_ = cmd.MarkFlagRequired("definition")
	return cmd
}
