package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/wastehub/internal/client/client"
)

func (a *App) pendingCmd() *cobra.Command {
	var opts client.ListOptions
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List deposits awaiting review, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.client.ListDeposits(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.render(page, func(w *tabwriter.Writer) {
				row(w, "ID", "STATUS", "USER", "HUB", "TYPE", "KG", "EST. CREDITS", "SUBMITTED")
				for _, d := range page.Deposits {
					row(w, d.ID, d.Status, orDash(d.UserName), orDash(d.HubName), d.WasteType,
						d.Amount.String(), credits(d.EstimatedCredits), stamp(d.CreatedAt))
				}
				p := page.Pagination
				fmt.Fprintf(w, "\npage %d/%d, %d total\n", p.Page, max(p.TotalPages, 1), p.Total)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Status, "status", "", "pending, verified, rejected or all (default pending)")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "page number, from 1")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size")
	return cmd
}

func (a *App) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show deposit counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(s, func(w *tabwriter.Writer) {
				row(w, "PENDING", "VERIFIED", "REJECTED", "TOTAL")
				row(w, s.Pending, s.Verified, s.Rejected, s.Total)
			})
		},
	}
}

func (a *App) verifyCmd() *cobra.Command {
	var amount string
	cmd := &cobra.Command{
		Use:   "verify DEPOSIT_ID",
		Short: "Verify a pending deposit and credit its owner",
		Long:  "Verify a pending deposit. Without --credits the estimate computed at submission is allocated.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := a.adminID()
			if err != nil {
				return err
			}
			var override *decimal.Decimal
			if cmd.Flags().Changed("credits") {
				c, err := decimal.NewFromString(strings.TrimSpace(amount))
				if err != nil {
					return fmt.Errorf("invalid --credits %q: %w", amount, err)
				}
				if c.IsNegative() {
					return fmt.Errorf("--credits must not be negative")
				}
				override = &c
			}

			res, err := a.client.Verify(cmd.Context(), args[0], admin, override)
			if err != nil {
				return err
			}
			return a.render(res, func(w *tabwriter.Writer) {
				row(w, "DEPOSIT", "STATUS", "CREDITED", "BALANCE", "LEDGER ENTRY")
				row(w, res.Deposit.ID, res.Deposit.Status, credits(res.LedgerEntry.Amount),
					credits(res.BalanceAfter), res.LedgerEntry.ID)
			})
		},
	}
	cmd.Flags().StringVar(&a.admin, "admin", "", "acting administrator id")
	cmd.Flags().StringVar(&amount, "credits", "", "credits to allocate instead of the estimate")
	return cmd
}

func (a *App) rejectCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "reject DEPOSIT_ID",
		Short: "Reject a pending deposit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := a.adminID()
			if err != nil {
				return err
			}
			d, err := a.client.Reject(cmd.Context(), args[0], admin, reason)
			if err != nil {
				return err
			}
			return a.render(d, func(w *tabwriter.Writer) {
				row(w, "DEPOSIT", "STATUS", "REASON")
				why := ""
				if d.Rejection != nil {
					why = d.Rejection.Reason
				}
				row(w, d.ID, d.Status, orDash(why))
			})
		},
	}
	cmd.Flags().StringVar(&a.admin, "admin", "", "acting administrator id")
	cmd.Flags().StringVar(&reason, "reason", "", "why the deposit is rejected")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}
