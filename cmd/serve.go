package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/adapters/httpapi"
	"github.com/bnema/wm-pickup-cli/internal/application"
	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/cenkalti/backoff/v5"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	setupInitialBackoff = 30 * time.Second
	setupMaxBackoff     = 30 * time.Minute
	shutdownTimeout     = 10 * time.Second
)

// setupRetry bounds the exponential backoff between setup attempts.
type setupRetry struct {
	initial time.Duration
	max     time.Duration
}

var defaultSetupRetry = setupRetry{initial: setupInitialBackoff, max: setupMaxBackoff}

type setupRunner interface {
	Setup(ctx context.Context) ([]application.Target, error)
}

func newServeCmd(app *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the polling daemon and serve sensors over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if listen == "" {
				listen = app.cfg.HTTPListen
			}
			return runServe(ctx, app, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (default from http.listen)")

	return cmd
}

func runServe(ctx context.Context, app *app, listen string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	log := app.log.With().Str("component", "serve").Logger()

	sched, err := app.schedule()
	if err != nil {
		return err
	}
	poller, err := app.poller(ctx)
	if err != nil {
		return err
	}
	service, _, err := app.services(ctx)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listen, err)
	}
	server := httpapi.NewServer(listen, httpapi.NewHandler(service, app.log).Routes())
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	log.Info().Str("listen", ln.Addr().String()).Msg("serving sensors")

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
	}()

	if err := setupWithRetry(ctx, poller, defaultSetupRetry, log); err != nil {
		if ctx.Err() != nil {
			notify(log, daemon.SdNotifyStopping)
			return nil
		}
		return err
	}

	notify(log, daemon.SdNotifyReady)
	cycle := func(ctx context.Context) {
		report := poller.PollAll(ctx)
		notify(log, fmt.Sprintf("STATUS=last cycle %s: %d resolved, %d failed; next at %s",
			report.ID, report.Resolved(), report.Failed(), sched.Next(time.Now()).Format(time.RFC3339)))
	}
	cycle(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sched.Run(ctx, cycle)
	}()

	select {
	case err := <-serveErr:
		cancel()
		<-done
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
	case <-done:
	}

	notify(log, daemon.SdNotifyStopping)
	return nil
}

// setupWithRetry builds the poll targets, backing off while the provider is
// unreachable. A missing configuration is not retried.
func setupWithRetry(ctx context.Context, poller setupRunner, retry setupRetry, log zerolog.Logger) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retry.initial
	bo.MaxInterval = retry.max

	operation := func() ([]application.Target, error) {
		targets, err := poller.Setup(ctx)
		if err == nil {
			return targets, nil
		}
		if errors.Is(err, domain.ErrNotReady) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Dur("retry_in", next).Msg("setup not ready")
			notify(log, "STATUS=waiting for provider: "+err.Error())
		}),
	)
	if err != nil {
		return fmt.Errorf("setup subscriptions: %w", err)
	}
	return nil
}

func notify(log zerolog.Logger, state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		log.Debug().Err(err).Msg("sd_notify")
	}
}
