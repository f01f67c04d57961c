package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nutriplan/portal/svc/reporting"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Operator reports (superadmin only)",
}

var reportAdminsCmd = &cobra.Command{
	Use:   "admins",
	Short: "List every tenant admin with plan and billing info",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireSession(cmd); err != nil {
			return err
		}

		overview, err := a.reports.Overview(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "EMAIL\tPLAN\tPRICE\tNEXT BILLING")
		for _, row := range overview.Admins {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Email, row.Plan, row.Price, row.NextBilling)
		}
		return w.Flush()
	},
}

var reportRevenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Show the revenue series for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireSession(cmd); err != nil {
			return err
		}

		periodFlag, _ := cmd.Flags().GetString("period")
		analytics, err := a.reports.Analytics(cmd.Context(), reporting.Period(periodFlag))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "period:        %s\n", analytics.Period)
		fmt.Fprintf(out, "total revenue: $%.2f\n", analytics.TotalRevenue)
		fmt.Fprintf(out, "transactions:  %d\n", analytics.Transactions)
		for _, point := range analytics.Points {
			fmt.Fprintf(out, "  %-8s $%.2f\n", point.Label, point.Amount)
		}
		return nil
	},
}

func init() {
	reportRevenueCmd.Flags().String("period", string(reporting.PeriodDay), "aggregation window: day, week, or month")
	reportCmd.AddCommand(reportAdminsCmd, reportRevenueCmd)
}
