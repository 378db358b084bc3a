package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/batch"
	"tally/internal/inventory"
	"tally/internal/logging"
	"tally/internal/services/depot"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Apply one operation across many items",
		Long: "Apply a lifecycle operation, status change, or transfer to many items " +
			"at once. Duplicate ids are collapsed and each item succeeds or fails " +
			"on its own.",
	}

	for _, op := range inventory.AllOperations() {
		batchCmd.AddCommand(newBatchTransitionCommand(ctx, op))
	}
	batchCmd.AddCommand(newBatchTransferCommand(ctx))

	return batchCmd
}

func newBatchTransitionCommand(ctx *commandContext, op inventory.Operation) *cobra.Command {
	var destination string

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <id>...", op),
		Short: transitionShort(op),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator, view, err := ctx.batchSetup(cmd)
			if err != nil {
				return err
			}
			results := coordinator.TransitionBatch(cmd.Context(), view, args, op, destination)
			return renderBatchResults(cmd, results)
		},
	}

	if op == inventory.OpOutbound {
		cmd.Flags().StringVar(&destination, "destination", "", "Where the items are loaned to (required)")
		_ = cmd.MarkFlagRequired("destination")
	}
	return cmd
}

func newBatchTransferCommand(ctx *commandContext) *cobra.Command {
	var warehouseID int64
	var remarks string

	cmd := &cobra.Command{
		Use:   "transfer <id>...",
		Short: "Move many items to another warehouse",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator, view, err := ctx.batchSetup(cmd)
			if err != nil {
				return err
			}
			results := coordinator.TransferBatch(cmd.Context(), view, args, warehouseID, remarks)
			return renderBatchResults(cmd, results)
		},
	}

	cmd.Flags().Int64Var(&warehouseID, "warehouse", 0, "Destination warehouse id (required)")
	cmd.Flags().StringVar(&remarks, "remarks", "", "Transfer remarks")
	_ = cmd.MarkFlagRequired("warehouse")
	return cmd
}

// batchSetup builds a coordinator plus a local view of the depot's items so
// doomed operations are rejected before any network call.
func (c *commandContext) batchSetup(cmd *cobra.Command) (*batch.Coordinator, *inventory.Collection, error) {
	client, err := c.depot()
	if err != nil {
		return nil, nil, err
	}
	items, err := client.Items(cmd.Context(), depot.ItemFilter{})
	if err != nil {
		return nil, nil, err
	}
	return batch.NewCoordinator(client, logging.NewNop()), inventory.NewCollection(items...), nil
}

func renderBatchResults(cmd *cobra.Command, results []batch.Result) error {
	colorize := shouldColorize(cmd.OutOrStdout())
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			rows = append(rows, []string{result.ItemID, "failed", result.Err.Error()})
			continue
		}
		// Acknowledgement-only dispatch yields no snapshot for ids the local
		// view never held.
		detail := "-"
		if result.Item != nil {
			detail = renderStatus(result.Item.Status, colorize)
		}
		rows = append(rows, []string{result.ItemID, "ok", detail})
	}
	renderTable(cmd.OutOrStdout(), []column{
		{Title: "Item"},
		{Title: "Result"},
		{Title: "Detail"},
	}, rows)

	failed := batch.Failed(results)
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d items failed", len(failed), len(results))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "All %d items succeeded.\n", len(results))
	return nil
}
