package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"melodi/internal/app"
)

func newTxCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"ledger"},
		Short:   "Manage income and expense entries",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <income|expense> <amount> <description>",
		Short: "Record a transaction",
		Long: `Record a transaction. The amount must be positive and may use a comma
or a dot as the decimal separator.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				tx, err := a.AddTransactionInput(ctx, joinArgs(args[2:]), args[1], args[0])
				if err != nil {
					return err
				}
				if e.asJSON {
					return e.printJSON(tx)
				}
				e.printf("Transaction added: %d (%s %s)\n", tx.ID, tx.Type, formatAmount(tx.Amount))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				txs := a.Transactions()
				if e.asJSON {
					return e.printJSON(txs)
				}
				rows := make([][]string, 0, len(txs))
				for _, tx := range txs {
					rows = append(rows, []string{
						strconv.FormatInt(tx.ID, 10),
						formatTime(tx.Date),
						string(tx.Type),
						formatAmount(tx.Amount),
						tx.Desc,
					})
				}
				return e.table("ID\tDATE\tTYPE\tAMOUNT\tDESCRIPTION", rows)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "totals",
		Short: "Show income, expense and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				t := a.Totals()
				if e.asJSON {
					return e.printJSON(t)
				}
				e.printf("Income:  %s\nExpense: %s\nBalance: %s\n",
					formatAmount(t.Income), formatAmount(t.Expense), formatAmount(t.Balance))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				removed, err := a.DeleteTransaction(ctx, id)
				if err != nil {
					return err
				}
				e.reportDeleted("Transaction", id, removed)
				return nil
			})
		},
	})
	return cmd
}
