package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newSubscriptionsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "Manage configured subscriptions",
	}

	cmd.AddCommand(
		newSubscriptionsListCmd(app),
		newSubscriptionsRemoveCmd(app),
	)

	return cmd
}

func newSubscriptionsListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured subscriptions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := app.repo.List(cmd.Context())
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No subscriptions configured.")
				return nil
			}

			for _, entry := range entries {
				services := make([]string, 0, len(entry.Services))
				for _, service := range entry.Services {
					services = append(services, fmt.Sprintf("%s:%s", service.ID, service.Name))
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", entry.AccountID, entry.Title, entry.Username, strings.Join(services, ","))
			}

			return nil
		},
	}
}

func newSubscriptionsRemoveCmd(app *app) *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a subscription and its stored password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, _, err := app.services(cmd.Context())
			if err != nil {
				return err
			}

			if err := service.RemoveEntry(cmd.Context(), domain.AccountID(accountID)); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed subscription %s\n", accountID)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Account ID")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}
