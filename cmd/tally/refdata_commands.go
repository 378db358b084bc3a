package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tally/internal/textutil"
)

func newWarehousesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "warehouses",
		Short: "List warehouses",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.depot()
			if err != nil {
				return err
			}
			warehouses, err := client.Warehouses(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(warehouses))
			for _, warehouse := range warehouses {
				capacity := "-"
				if warehouse.Capacity > 0 {
					capacity = strconv.FormatInt(warehouse.Capacity, 10)
				}
				rows = append(rows, []string{
					strconv.FormatInt(warehouse.ID, 10),
					textutil.TitleLabel(warehouse.Name),
					orDash(warehouse.Location),
					capacity,
				})
			}
			renderTable(cmd.OutOrStdout(), []column{
				{Title: "ID", Numeric: true},
				{Title: "Name"},
				{Title: "Location"},
				{Title: "Capacity", Numeric: true},
			}, rows)
			return nil
		},
	}
}

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List item categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.depot()
			if err != nil {
				return err
			}
			categories, err := client.Categories(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(categories))
			for _, category := range categories {
				rows = append(rows, []string{
					strconv.FormatInt(category.ID, 10),
					textutil.TitleLabel(category.Name),
				})
			}
			renderTable(cmd.OutOrStdout(), []column{
				{Title: "ID", Numeric: true},
				{Title: "Name"},
			}, rows)
			return nil
		},
	}
}

func newDefinitionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "definitions",
		Short: "List item definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.depot()
			if err != nil {
				return err
			}
			definitions, err := client.ItemDefinitions(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(definitions))
			for _, definition := range definitions {
				rows = append(rows, []string{
					strconv.FormatInt(definition.ID, 10),
					textutil.TitleLabel(definition.Name),
					strconv.FormatInt(definition.CategoryID, 10),
				})
			}
			renderTable(cmd.OutOrStdout(), []column{
				{Title: "ID", Numeric: true},
				{Title: "Name"},
				{Title: "Category", Numeric: true},
			}, rows)
			return nil
		},
	}
}

func newAuditCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "audit <id|short-code>",
		Short: "Show the depot audit trail for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := ctx.resolveItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			client, err := ctx.depot()
			if err != nil {
				return err
			}
			logs, err := client.AuditLogs(cmd.Context(), item.ID)
			if err != nil {
				return err
			}
			if len(logs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No audit records for %s.\n", item.ShortID)
				return nil
			}
			rows := make([][]string, 0, len(logs))
			for _, entry := range logs {
				rows = append(rows, []string{
					formatLocalTime(entry.CreatedAt),
					textutil.TitleLabel(entry.Action),
					orDash(entry.Actor),
					orDash(textutil.Truncate(entry.Detail, 60)),
				})
			}
			renderTable(cmd.OutOrStdout(), []column{
				{Title: "Time"},
				{Title: "Action"},
				{Title: "Actor"},
				{Title: "Detail"},
			}, rows)
			return nil
		},
	}
}
