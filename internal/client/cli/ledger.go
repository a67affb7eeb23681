package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/wastehub/internal/client/client"
)

func (a *App) ledgerCmd() *cobra.Command {
	var opts client.ListOptions
	cmd := &cobra.Command{
		Use:   "ledger USER_ID",
		Short: "Show a user's credit ledger, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.client.Ledger(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return a.render(page, func(w *tabwriter.Writer) {
				row(w, "WHEN", "TYPE", "AMOUNT", "BALANCE", "REFERENCE", "DESCRIPTION")
				for _, e := range page.Entries {
					row(w, stamp(e.CreatedAt), e.Type, e.Amount.StringFixed(2), credits(e.BalanceAfter),
						e.ReferenceType+":"+e.ReferenceID, orDash(e.Description))
				}
				p := page.Pagination
				fmt.Fprintf(w, "\npage %d/%d, %d total\n", p.Page, max(p.TotalPages, 1), p.Total)
			})
		},
	}
	cmd.Flags().IntVar(&opts.Page, "page", 0, "page number, from 1")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size")
	return cmd
}
