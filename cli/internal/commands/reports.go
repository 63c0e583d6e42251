package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ritchiero/Budget-Agent/cli/internal/output"
)

func newOverviewCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show sessions and the top spending log files",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			src, err := opts.source()
			if err != nil {
				return err
			}
			o, err := src.Overview()
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return output.PrintJSON(opts.out, o)
			}
			output.PrintOverview(opts.out, o, opts.tableOptions())
			return nil
		},
	}
}

func newHiddenCostsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "hidden-costs",
		Aliases: []string{"hidden"},
		Short:   "Break spend down into user-initiated and hidden background work",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			src, err := opts.source()
			if err != nil {
				return err
			}
			h, err := src.HiddenCosts()
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return output.PrintJSON(opts.out, h)
			}
			output.PrintHiddenCosts(opts.out, h, opts.tableOptions())
			return nil
		},
	}
}

func newTimelineCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Show recent billable events and cost per day",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			src, err := opts.source()
			if err != nil {
				return err
			}
			t, err := src.Timeline()
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return output.PrintJSON(opts.out, t)
			}
			output.PrintTimeline(opts.out, t, opts.tableOptions())
			return nil
		},
	}
}

func newEstimateCommand(opts *options) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "estimate <task description>",
		Short: "Estimate what a task will cost before running it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			src, err := opts.source()
			if err != nil {
				return err
			}
			e, err := src.Estimate(strings.Join(args, " "), model)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return output.PrintJSON(opts.out, e)
			}
			output.PrintEstimate(opts.out, e, opts.tableOptions())
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Target model to price the task on")
	return cmd
}
