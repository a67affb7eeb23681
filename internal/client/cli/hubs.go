package cli

import (
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *App) hubsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hubs",
		Short: "List collection hubs and their credit rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hubs, err := a.client.Hubs(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(hubs, func(w *tabwriter.Writer) {
				row(w, "ID", "NAME", "CITY", "RATES (credits/kg)")
				for _, h := range hubs {
					rates := make([]string, 0, len(h.AcceptedWasteTypes))
					for _, t := range h.AcceptedWasteTypes {
						rates = append(rates, t+"="+h.Rates[t].String())
					}
					sort.Strings(rates)
					row(w, h.ID, h.Name, orDash(h.Location.City), strings.Join(rates, " "))
				}
			})
		},
	}
}
