package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nutriplan/portal/pkg/subscription"
	"github.com/nutriplan/portal/svc/billing"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the subscription status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireSession(cmd); err != nil {
			return err
		}

		ctrl := a.settings()
		if err := ctrl.Load(cmd.Context()); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch ctrl.State() {
		case subscription.StateBlocked:
			fmt.Fprintln(out, a.tr.T(a.locale, "cli.blocked"))
			return nil
		case subscription.StateOK:
			a.printSnapshot(out, ctrl.Snapshot())
			return nil
		default:
			return errors.New("could not load the subscription status")
		}
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the subscription at the end of the current cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireSession(cmd); err != nil {
			return err
		}

		ctrl := a.settings()
		if err := ctrl.Load(cmd.Context()); err != nil {
			return err
		}
		if ctrl.State() != subscription.StateOK {
			return errors.New("could not load the subscription status")
		}
		if !ctrl.CanCancel() {
			return errors.New("nothing to cancel: the subscription is already canceled or inactive")
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			snap := ctrl.Snapshot()
			fmt.Fprint(cmd.OutOrStdout(), a.tr.T(a.locale, "cli.cancel_confirm", "plan", string(snap.Status)))
			if !confirm(cmd.InOrStdin()) {
				fmt.Fprintln(cmd.OutOrStdout(), a.tr.T(a.locale, "cli.aborted"))
				return nil
			}
		}

		if err := ctrl.Cancel(cmd.Context()); err != nil {
			if msg := ctrl.InlineError(); msg != "" {
				return errors.New(msg)
			}
			return err
		}

		if msg := ctrl.Message(); msg != "" {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		}
		a.printSnapshot(cmd.OutOrStdout(), ctrl.Snapshot())
		return nil
	},
}

var changePlanCmd = &cobra.Command{
	Use:   "change-plan <monthly|quarterly|annual>",
	Short: "Schedule a plan change at the next renewal",
	Long: `Schedule a move between paid tiers. The change takes effect at the next
renewal, not immediately; pass --acknowledge to confirm you understand the
deferral. Trial accounts upgrade through checkout instead (see "reactivate").`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireSession(cmd); err != nil {
			return err
		}

		ctrl := a.settings()
		if err := ctrl.Load(cmd.Context()); err != nil {
			return err
		}
		if ctrl.State() != subscription.StateOK {
			return errors.New("could not load the subscription status")
		}

		target := subscription.Plan(strings.ToLower(args[0]))
		if !target.Paid() {
			return fmt.Errorf("unknown plan %q: choose monthly, quarterly, or annual", args[0])
		}

		acknowledged, _ := cmd.Flags().GetBool("acknowledge")
		snap := ctrl.Snapshot()

		outcome, err := a.engine.ChangePlan(cmd.Context(), snap, target, acknowledged)
		switch {
		case errors.Is(err, subscription.ErrAcknowledgmentRequired):
			return errors.New("the change defers to the next renewal; confirm with --acknowledge")
		case errors.Is(err, subscription.ErrCheckoutRequired):
			return errors.New("trial accounts upgrade through checkout; run `portalctl reactivate`")
		case errors.Is(err, subscription.ErrTransitionNotAllowed):
			return fmt.Errorf("changing from %s to %s is not available", snap.Status, target)
		case err != nil:
			var rejection *subscription.BusinessError
			if errors.As(err, &rejection) && rejection.Message != "" {
				return errors.New(rejection.Message)
			}
			return err
		}

		if outcome.Message != "" {
			fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
		}
		if outcome.Snapshot != nil {
			a.printSnapshot(cmd.OutOrStdout(), outcome.Snapshot)
		}
		return nil
	},
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the plans available for reactivation",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireSession(cmd); err != nil {
			return err
		}

		preview, err := a.engine.ReactivationPreview(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "reactivation mode: %s\n", preview.Mode)
		if len(preview.Plans) == 0 {
			fmt.Fprintln(out, "no plans on offer")
			return nil
		}
		for _, opt := range preview.Plans {
			line := fmt.Sprintf("  %-16s %s", opt.PriceID, opt.DisplayName)
			if opt.PriceDisplay != "" {
				line += "  " + opt.PriceDisplay
			}
			if opt.AllowTrial {
				line += fmt.Sprintf("  (%d-day trial available)", opt.TrialDays)
			}
			if opt.PriceID == preview.CurrentPriceID {
				line += "  [current]"
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var reactivateCmd = &cobra.Command{
	Use:   "reactivate",
	Short: "Restore access to a canceled or ended subscription",
	Long: `Restore access. Depending on the account's state this either resumes the
existing plan with no payment event, or starts a fresh checkout for the
selected plan. A checkout prints a URL to finish in the browser.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireSession(cmd); err != nil {
			return err
		}

		ctrl := a.reactivation()
		if err := ctrl.Load(cmd.Context()); err != nil {
			if errors.Is(err, billing.ErrNoReactivationPath) {
				return errors.New("no reactivation path is available for this account")
			}
			return err
		}

		picker := ctrl.Picker()
		if priceID, _ := cmd.Flags().GetString("plan"); priceID != "" {
			if err := picker.Select(priceID); err != nil {
				return fmt.Errorf("unknown plan %q: run `portalctl plans` to list options", priceID)
			}
		}
		if withTrial, _ := cmd.Flags().GetBool("trial"); withTrial {
			if err := picker.SetTrialOptIn(true); err != nil {
				return errors.New("the selected plan does not offer a trial")
			}
		}

		outcome, err := ctrl.Start(cmd.Context())
		if err != nil {
			if msg := ctrl.InlineError(); msg != "" {
				return errors.New(msg)
			}
			return err
		}

		if outcome.CheckoutURL != "" {
			// The redirect hook already printed the URL.
			return nil
		}
		if outcome.Message != "" {
			fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
		}
		if outcome.Snapshot != nil {
			a.printSnapshot(cmd.OutOrStdout(), outcome.Snapshot)
		}
		return nil
	},
}

func init() {
	cancelCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	changePlanCmd.Flags().Bool("acknowledge", false, "confirm the change takes effect at the next renewal")
	reactivateCmd.Flags().String("plan", "", "price ID of the plan to subscribe to")
	reactivateCmd.Flags().Bool("trial", false, "start with a trial when the plan offers one")
}

func confirm(in io.Reader) bool {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (a *app) printSnapshot(out io.Writer, snap *subscription.Snapshot) {
	if snap == nil {
		return
	}

	fmt.Fprintf(out, "plan:     %s\n", snap.Status)
	fmt.Fprintf(out, "active:   %t\n", snap.Active)
	if snap.Canceled {
		fmt.Fprintln(out, a.tr.T(a.locale, "status.canceled_note"))
	}
	if snap.CurrentCycleEndsOn != nil {
		fmt.Fprintf(out, "cycle ends:   %s\n", snap.CurrentCycleEndsOn.Format(dateFormat))
	}
	if snap.NextBillingOn != nil {
		fmt.Fprintf(out, "next billing: %s\n", snap.NextBillingOn.Format(dateFormat))
	}
	if snap.NextPlan != nil {
		line := fmt.Sprintf("next plan:    %s", snap.NextPlan.Plan)
		if snap.NextPlan.EffectiveOn != nil {
			line += " from " + snap.NextPlan.EffectiveOn.Format(dateFormat)
		}
		fmt.Fprintln(out, line)
	}
	if snap.Trial != nil {
		fmt.Fprintln(out, a.tr.N(a.locale, "status.trial_days", snap.Trial.DaysRemaining))
	}
}

const dateFormat = "2006-01-02"
