package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/application"
	"github.com/spf13/cobra"
)

type pollResultView struct {
	UniqueID string  `json:"unique_id"`
	Pickup   *string `json:"pickup"`
	Error    string  `json:"error,omitempty"`
	Skipped  bool    `json:"skipped,omitempty"`
}

type pollReportView struct {
	CycleID  string           `json:"cycle_id"`
	Resolved int              `json:"resolved"`
	Failed   int              `json:"failed"`
	Skipped  int              `json:"skipped"`
	Results  []pollResultView `json:"results"`
}

func newPollCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Refresh the next pickup date of every subscription now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			poller, err := app.poller(cmd.Context())
			if err != nil {
				return err
			}

			var report application.CycleReport
			run := func(ctx context.Context) error {
				if _, err := poller.Setup(ctx); err != nil {
					return err
				}
				report = poller.PollAll(ctx)
				return nil
			}

			if asJSON {
				err = run(cmd.Context())
			} else {
				err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Refreshing pickup dates...", run)
			}
			if err != nil {
				return err
			}

			if err := writePollReport(cmd, report, asJSON); err != nil {
				return err
			}

			if report.Resolved() == 0 && report.Failed() > 0 {
				return errors.New("no pickup date could be refreshed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the cycle report as JSON")

	return cmd
}

func writePollReport(cmd *cobra.Command, report application.CycleReport, asJSON bool) error {
	view := pollReportView{
		CycleID:  report.ID,
		Resolved: report.Resolved(),
		Failed:   report.Failed(),
		Skipped:  report.Skipped(),
		Results:  make([]pollResultView, 0, len(report.Results)),
	}
	for _, result := range report.Results {
		item := pollResultView{UniqueID: result.UniqueID, Skipped: result.Skipped}
		if result.Err != nil {
			item.Error = result.Err.Error()
		} else {
			pickup := result.Pickup.Value.Format(time.RFC3339)
			item.Pickup = &pickup
		}
		view.Results = append(view.Results, item)
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	for _, item := range view.Results {
		switch {
		case item.Pickup != nil:
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", item.UniqueID, *item.Pickup)
		case item.Skipped:
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tskipped\n", item.UniqueID)
		default:
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\terror: %s\n", item.UniqueID, item.Error)
		}
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "resolved: %d, failed: %d, skipped: %d\n", view.Resolved, view.Failed, view.Skipped)
	return err
}
