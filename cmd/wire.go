package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/adapters/logging"
	statusadapter "github.com/bnema/wm-pickup-cli/internal/adapters/render/status"
	tomlrepo "github.com/bnema/wm-pickup-cli/internal/adapters/repo/toml"
	"github.com/bnema/wm-pickup-cli/internal/adapters/schedule"
	chainstore "github.com/bnema/wm-pickup-cli/internal/adapters/secrets/chain"
	filestore "github.com/bnema/wm-pickup-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/wm-pickup-cli/internal/adapters/secrets/pass"
	rediscache "github.com/bnema/wm-pickup-cli/internal/adapters/sessioncache/redis"
	sqlitestate "github.com/bnema/wm-pickup-cli/internal/adapters/state/sqlite"
	"github.com/bnema/wm-pickup-cli/internal/adapters/wm"
	"github.com/bnema/wm-pickup-cli/internal/application"
	"github.com/bnema/wm-pickup-cli/internal/config"
	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// app is wired once per invocation, after flags are parsed, so the logger
// writes to the command's error stream.
type app struct {
	cfg        config.Config
	log        zerolog.Logger
	repo       *tomlrepo.Repository
	secrets    ports.SecretStore
	upstream   *wm.Client
	validator  *application.CredentialValidator
	discoverer *application.Discoverer
	onboarding *application.Onboarding

	statusRenderer func([]domain.PickupSensor, statusadapter.RenderOptions) (string, error)
	now            func() time.Time

	stateOnce sync.Once
	state     *sqlitestate.Store
	stateErr  error
	service   *application.Service
	closers   []func() error
}

func (a *app) wire(stderr io.Writer) error {
	v := viper.New()
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, stderr)

	repo, err := tomlrepo.NewRepository(v)
	if err != nil {
		return fmt.Errorf("wire subscription repository: %w", err)
	}

	secrets, err := newSecretStore(cfg.Secrets, log)
	if err != nil {
		return fmt.Errorf("wire secret store: %w", err)
	}

	api := wm.DefaultAPI()
	api.AuthBaseURL = cfg.Upstream.AuthURL
	api.APIBaseURL = cfg.Upstream.APIURL
	api.ClientID = cfg.Upstream.ClientID
	api.APIKey = cfg.Upstream.APIKey
	upstream := wm.NewClient(api, cfg.Upstream.Timeout)
	upstream.Location = cfg.Schedule.Location

	validator := application.NewCredentialValidator(upstream)
	discoverer := application.NewDiscoverer(upstream)

	a.cfg = cfg
	a.log = log
	a.repo = repo
	a.secrets = secrets
	a.upstream = upstream
	a.validator = validator
	a.discoverer = discoverer
	a.onboarding = application.NewOnboarding(validator, discoverer, repo, secrets, log)
	a.statusRenderer = statusadapter.Render
	a.now = time.Now

	return nil
}

func newSecretStore(cfg config.SecretsConfig, log zerolog.Logger) (ports.SecretStore, error) {
	switch cfg.Backend {
	case config.SecretsFile:
		return filestore.NewStore(cfg.Dir), nil
	case config.SecretsPass:
		return passstore.NewStore(cfg.PassPrefix), nil
	default:
		return chainstore.NewPassFirstWithFileFallback(cfg.PassPrefix, cfg.Dir, log.With().Str("component", "secrets").Logger())
	}
}

// services opens the pickup state store on first use.
func (a *app) services(ctx context.Context) (*application.Service, *sqlitestate.Store, error) {
	a.stateOnce.Do(func() {
		a.state, a.stateErr = sqlitestate.Open(ctx, sqlitestate.Config{Path: a.cfg.StatePath}, a.log)
		if a.stateErr == nil {
			a.service = application.NewService(a.repo, a.secrets, a.state)
		}
	})
	if a.stateErr != nil {
		return nil, nil, fmt.Errorf("open pickup state: %w", a.stateErr)
	}
	return a.service, a.state, nil
}

func (a *app) sessionCache(ctx context.Context) ports.SessionCache {
	if !a.cfg.SessionCache.Enabled {
		return nil
	}

	cache, err := rediscache.NewCache(ctx, a.cfg.SessionCache.RedisURL)
	if err != nil {
		a.log.Warn().Err(err).Msg("session cache unavailable, authenticating every cycle")
		return nil
	}
	a.closers = append(a.closers, cache.Close)
	return cache
}

func (a *app) poller(ctx context.Context) (*application.Poller, error) {
	service, state, err := a.services(ctx)
	if err != nil {
		return nil, err
	}

	return application.NewPoller(
		service,
		a.validator,
		a.discoverer,
		state,
		a.sessionCache(ctx),
		ports.SystemClock{},
		application.PollerConfig{
			Concurrency:   a.cfg.Poll.Concurrency,
			RatePerSecond: a.cfg.Poll.RatePerSecond,
			Location:      a.cfg.Schedule.Location,
			SessionTTL:    a.cfg.SessionCache.TTL,
		},
		a.log,
	), nil
}

func (a *app) schedule() (*schedule.Schedule, error) {
	return schedule.New(schedule.Config{
		Daily:    a.cfg.Schedule.Daily,
		Fallback: a.cfg.Schedule.Fallback,
		Location: a.cfg.Schedule.Location,
	}, a.log)
}

func (a *app) titles(ctx context.Context) map[domain.AccountID]string {
	entries, err := a.repo.List(ctx)
	if err != nil {
		return nil
	}

	titles := make(map[domain.AccountID]string, len(entries))
	for _, entry := range entries {
		titles[entry.AccountID] = entry.Title
	}
	return titles
}

func (a *app) close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	if a.state != nil {
		errs = append(errs, a.state.Close())
	}
	return errors.Join(errs...)
}
