package cmd

import (
	"github.com/spf13/cobra"
)

// annotationNoWire marks commands that run without configuration.
const annotationNoWire = "wmp/no-wire"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "wmp",
		Short:         "Waste pickup CLI (wmp): onboard accounts and track the next pickup date",
		Long:          "wmp signs in to your waste-management provider account, lets you pick which services to track, and keeps the next pickup date of each service up to date, either on demand or as a daemon.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationNoWire] != "" {
				return nil
			}

			return app.wire(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationNoWire] != "" {
				return nil
			}
			return app.close()
		},
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newOnboardCmd(app),
		newSubscriptionsCmd(app),
		newPollCmd(app),
		newStatusCmd(app),
		newServeCmd(app),
		newNextFireCmd(app),
	)

	return rootCmd
}
