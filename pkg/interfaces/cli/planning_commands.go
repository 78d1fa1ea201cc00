package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newDemandCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demand EVENT_ID",
		Short: "Show the buffered ingredient demand of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireOrg(); err != nil {
				return err
			}
			printer, err := opts.printer()
			if err != nil {
				return err
			}
			app, err := opts.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			lines, err := app.Planner.CalculateEventDemand(cmd.Context(), args[0], opts.orgID)
			if err != nil {
				return err
			}
			return printer.Demand(args[0], lines)
		},
	}
}

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	var failOnPartial bool

	cmd := &cobra.Command{
		Use:   "generate EVENT_ID",
		Short: "Generate draft purchase orders for an event, one per supplier",
		Long: `generate groups the event's demand by default supplier and creates one draft
purchase order per group. Each run creates new orders; it is not idempotent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireOrg(); err != nil {
				return err
			}
			printer, err := opts.printer()
			if err != nil {
				return err
			}
			app, err := opts.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Orchestrator.GenerateFromEventDetailed(cmd.Context(), args[0], opts.orgID)
			if err != nil {
				return err
			}
			if err := printer.Generation(result); err != nil {
				return err
			}
			if failOnPartial && result.HasFailures() {
				return fmt.Errorf("%d supplier group(s) failed", len(result.Failures))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failOnPartial, "strict", false, "Exit non-zero when any supplier group fails")
	return cmd
}

func newStockCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stock EVENT_ID",
		Short: "Check current stock against an event's buffered demand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireOrg(); err != nil {
				return err
			}
			printer, err := opts.printer()
			if err != nil {
				return err
			}
			app, err := opts.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Orchestrator.CheckStockAvailability(cmd.Context(), args[0], opts.orgID)
			if err != nil {
				return err
			}
			return printer.Stock(args[0], report)
		},
	}
}

func newDeliveryCommand(opts *rootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "delivery SUPPLIER_ID",
		Short: "Estimate when an order placed with a supplier arrives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := opts.printer()
			if err != nil {
				return err
			}

			var orderInstant time.Time
			if at != "" {
				orderInstant, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at value: %w", err)
				}
			}

			app, err := opts.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if orderInstant.IsZero() {
				orderInstant = app.Estimator.Now()
			}
			date, err := app.Estimator.EstimateDeliveryDate(cmd.Context(), args[0], orderInstant)
			if err != nil {
				return err
			}
			return printer.Delivery(args[0], orderInstant, date)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Order instant in RFC3339 (default now)")
	return cmd
}
