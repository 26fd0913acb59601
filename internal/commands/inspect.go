package commands

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wealthwise/internal/core"
	"wealthwise/internal/ledger"
)

func newInspectCommand() *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "inspect <cookie-value|->",
		Short: "Decode a saved ledger and print its rows and totals",
		Long: "Decode the value of the transactions cookie (URL-escaped or raw JSON)\n" +
			"and print every row followed by the totals. Use - to read from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args[0]
			if raw == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				raw = strings.TrimSpace(string(data))
			}
			return runInspect(cmd.OutOrStdout(), raw, currency)
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "Rs.", "currency symbol for amounts")

	return cmd
}

func runInspect(w io.Writer, raw, currency string) error {
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	txs, err := ledger.Decode([]byte(raw))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tDESCRIPTION")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.Date, tx.Kind, tx.Amount.Format(currency),
			core.Truncate(tx.Description, core.DescriptionPreviewLen))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	totals := core.Aggregate(txs)
	fmt.Fprintf(w, "\n%d transactions\n", len(txs))
	fmt.Fprintf(w, "Income:    %s\n", totals.Income.Format(currency))
	fmt.Fprintf(w, "Expense:   %s\n", totals.Expense.Format(currency))
	fmt.Fprintf(w, "Balance:   %s\n", totals.Balance().Format(currency))
	return nil
}
