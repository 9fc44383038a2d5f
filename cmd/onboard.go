package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/wm-pickup-cli/internal/adapters/tui/onboard"
	"github.com/bnema/wm-pickup-cli/internal/application"
	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/spf13/cobra"
)

type onboardOptions struct {
	username      string
	password      string
	passwordStdin bool
	accountID     string
	serviceIDs    []string
}

func newOnboardCmd(app *app) *cobra.Command {
	var opts onboardOptions

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Add a subscription for an account and its services",
		Long: "Sign in, choose an account and the services to track. Without --username an interactive wizard is started. " +
			"With --username the flow runs non-interactively; --account may be omitted when the login has a single account and " +
			"--service defaults to every listed service.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				entry domain.ConfigEntry
				err   error
			)
			if opts.username == "" {
				entry, err = onboard.Run(cmd.Context(), app.onboarding, cmd.InOrStdin(), cmd.OutOrStdout())
			} else {
				entry, err = runOnboardNonInteractive(cmd, app, opts)
			}
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved subscription %s (%s) with %d service(s)\n", entry.Title, entry.AccountID, len(entry.Services))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.username, "username", "", "Account username (email)")
	cmd.Flags().StringVar(&opts.password, "password", "", "Account password")
	cmd.Flags().BoolVar(&opts.passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().StringVar(&opts.accountID, "account", "", "Account ID to subscribe")
	cmd.Flags().StringSliceVar(&opts.serviceIDs, "service", nil, "Service ID to track (repeatable, default all)")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}

func runOnboardNonInteractive(cmd *cobra.Command, app *app, opts onboardOptions) (domain.ConfigEntry, error) {
	password := opts.password
	if opts.passwordStdin {
		var err error
		if password, err = readPassword(cmd.InOrStdin()); err != nil {
			return domain.ConfigEntry{}, err
		}
	}

	ctx := cmd.Context()
	credentialsStep := app.onboarding.Begin()
	accountStep, err := credentialsStep.Submit(ctx, domain.Credentials{Username: opts.username, Password: password})
	if err != nil {
		return domain.ConfigEntry{}, stepError(err)
	}
	if code, ok := accountStep.Form().Error(); ok {
		return domain.ConfigEntry{}, fmt.Errorf("list accounts: %s", code.Message())
	}

	accountID, err := pickAccount(accountStep.Accounts(), opts.accountID)
	if err != nil {
		return domain.ConfigEntry{}, err
	}

	serviceStep, err := accountStep.Submit(ctx, accountID)
	if err != nil {
		return domain.ConfigEntry{}, stepError(err)
	}
	if code, ok := serviceStep.Form().Error(); ok {
		return domain.ConfigEntry{}, fmt.Errorf("list services: %s", code.Message())
	}

	selected := make([]domain.ServiceID, 0, len(opts.serviceIDs))
	for _, id := range opts.serviceIDs {
		selected = append(selected, domain.ServiceID(strings.TrimSpace(id)))
	}
	if len(selected) == 0 {
		for _, id := range serviceStep.Form().Defaults {
			selected = append(selected, domain.ServiceID(id))
		}
	}

	entry, err := serviceStep.Submit(ctx, selected)
	if err != nil {
		return domain.ConfigEntry{}, stepError(err)
	}
	return entry, nil
}

func pickAccount(accounts []domain.Account, requested string) (domain.AccountID, error) {
	if requested != "" {
		return domain.AccountID(requested), nil
	}
	if len(accounts) == 1 {
		return accounts[0].ID, nil
	}

	var b strings.Builder
	for _, account := range accounts {
		_, _ = fmt.Fprintf(&b, "\n  %s\t%s", account.ID, account.Name)
	}
	return "", fmt.Errorf("--account is required when the login has %d accounts:%s", len(accounts), b.String())
}

func stepError(err error) error {
	var formErr *application.FormError
	if errors.As(err, &formErr) {
		return fmt.Errorf("%s step: %s: %w", formErr.Step, formErr.Code.Message(), err)
	}
	return err
}

func readPassword(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
