package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newNextFireCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "next-fire",
		Short: "Print when the next polling cycle runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched, err := app.schedule()
			if err != nil {
				return err
			}

			now := app.now()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "daily:\t%s\n", sched.NextFireTime(now).Format(time.RFC3339))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "next:\t%s\n", sched.Next(now).Format(time.RFC3339))
			return err
		},
	}
}
