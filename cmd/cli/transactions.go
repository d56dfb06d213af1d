package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type transactionView struct {
	ID        int64       `json:"id"`
	UserID    string      `json:"user_id"`
	Title     string      `json:"title"`
	Amount    json.Number `json:"amount"`
	Category  string      `json:"category"`
	CreatedAt string      `json:"created_at"`
}

func transactionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List, add and delete transactions",
	}

	cmd.AddCommand(listCmd(opts), addCmd(opts), deleteCmd(opts))

	return cmd
}

func listCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list <user-id>",
		Short: "List a user's transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var txs []transactionView
			path := "/api/transactions/" + url.PathEscape(args[0])
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, path, nil, &txs); err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), txs)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tTITLE")
			for _, t := range txs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.CreatedAt, t.Category, t.Amount, truncate(t.Title, 40))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")

	return cmd
}

func addCmd(opts *rootOptions) *cobra.Command {
	var (
		userID, title, category, amount string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction (negative amount for an expense)",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			body := map[string]any{
				"user_id":  userID,
				"title":    title,
				"amount":   json.Number(d.String()),
				"category": category,
			}

			var created transactionView
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, "/api/transactions", body, &created); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Owner user id")
	cmd.Flags().StringVar(&title, "title", "", "Transaction title")
	cmd.Flags().StringVar(&category, "category", "", "Transaction category")
	cmd.Flags().StringVar(&amount, "amount", "", "Signed amount, e.g. -4.50")
	for _, name := range []string{"user", "title", "category", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func deleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Message string `json:"message"`
			}
			path := "/api/transactions/" + url.PathEscape(args[0])
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodDelete, path, nil, &resp); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func summaryCmd(opts *rootOptions) *cobra.Command {
	var byCategory bool

	cmd := &cobra.Command{
		Use:   "summary <user-id>",
		Short: "Show a user's income, expense and balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/transactions/summary/" + url.PathEscape(args[0])
			if byCategory {
				path += "/categories"
			}

			var out json.RawMessage
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, path, nil, &out); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().BoolVar(&byCategory, "categories", false, "Break totals down by category")

	return cmd
}
