package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrCycleInFlight marks a subscription skipped because its previous cycle
// had not finished.
var ErrCycleInFlight = errors.New("poll already in flight")

type SourceLoader interface {
	Sources(ctx context.Context) ([]Source, error)
}

type PollerConfig struct {
	Concurrency   int
	RatePerSecond float64
	Location      *time.Location
	SessionTTL    time.Duration
}

// Target is one subscription ready to be polled.
type Target struct {
	Subscription domain.ServiceSubscription
	Credentials  domain.Credentials
}

type PollResult struct {
	UniqueID string
	Pickup   domain.ResolvedPickup
	Err      error
	Skipped  bool
}

type CycleReport struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []PollResult
}

func (r CycleReport) Resolved() int {
	return r.count(func(result PollResult) bool { return result.Err == nil })
}

func (r CycleReport) Failed() int {
	return r.count(func(result PollResult) bool { return result.Err != nil && !result.Skipped })
}

func (r CycleReport) Skipped() int {
	return r.count(func(result PollResult) bool { return result.Skipped })
}

func (r CycleReport) count(match func(PollResult) bool) int {
	n := 0
	for _, result := range r.Results {
		if match(result) {
			n++
		}
	}
	return n
}

// Poller refreshes the next pickup date of every subscription. Each cycle
// authenticates afresh unless a session cache is configured.
type Poller struct {
	sources    SourceLoader
	validator  *CredentialValidator
	discoverer *Discoverer
	state      ports.PickupStateStore
	cache      ports.SessionCache
	clock      ports.Clock
	log        zerolog.Logger
	cfg        PollerConfig
	limiter    *rate.Limiter

	mu       sync.Mutex
	targets  []Target
	pending  []Source
	inflight map[string]*sync.Mutex

	// setupMu serializes retries of pending sources.
	setupMu sync.Mutex
}

func NewPoller(sources SourceLoader, validator *CredentialValidator, discoverer *Discoverer, state ports.PickupStateStore, cache ports.SessionCache, clock ports.Clock, cfg PollerConfig, log zerolog.Logger) *Poller {
	if cache == nil {
		cache = ports.NopSessionCache{}
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Poller{
		sources:    sources,
		validator:  validator,
		discoverer: discoverer,
		state:      state,
		cache:      cache,
		clock:      clock,
		log:        log.With().Str("component", "poller").Logger(),
		cfg:        cfg,
		limiter:    rate.NewLimiter(limit, cfg.Concurrency),
		inflight:   make(map[string]*sync.Mutex),
	}
}

// Setup builds the targets from the persisted entries. Each entry is
// re-authenticated and its services re-listed so sensors carry current
// names; a service no longer listed keeps its stored name. Entries that fail
// are recorded as failed and kept pending; PollAll retries them. When nothing
// could be built the error wraps domain.ErrNotReady.
func (p *Poller) Setup(ctx context.Context) ([]Target, error) {
	sources, loadErr := p.sources.Sources(ctx)
	if loadErr != nil {
		p.log.Warn().Err(loadErr).Msg("some subscriptions could not be loaded")
	}
	if len(sources) == 0 && loadErr == nil {
		return nil, fmt.Errorf("%w: no subscriptions configured", domain.ErrSubscriptionNotFound)
	}

	targets := make([]Target, 0, len(sources))
	var pending []Source
	errs := loadErr
	for _, source := range sources {
		built, err := p.setupSource(ctx, source)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			p.recordSetupFailure(ctx, source, err)
			errs = errors.Join(errs, err)
			pending = append(pending, source)
			continue
		}
		targets = append(targets, built...)
	}

	p.mu.Lock()
	p.targets = targets
	p.pending = pending
	p.mu.Unlock()

	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotReady, errs)
	}

	p.log.Info().Int("sensors", len(targets)).Int("pending_accounts", len(pending)).Msg("subscriptions ready")

	return append([]Target(nil), targets...), nil
}

func (p *Poller) setupSource(ctx context.Context, source Source) ([]Target, error) {
	session, err := p.session(ctx, source.Credentials)
	if err != nil {
		return nil, err
	}

	services, err := p.discoverer.ListServices(ctx, session, source.Entry.AccountID)
	if err != nil {
		p.invalidate(ctx, source.Credentials)
		return nil, err
	}

	targets := make([]Target, 0, len(source.Entry.Services))
	for _, sub := range source.Entry.Subscriptions() {
		if service, ok := domain.FindService(services, sub.ServiceID); ok && service.Name != "" {
			sub.DisplayName = service.Name
		}
		targets = append(targets, Target{Subscription: sub, Credentials: source.Credentials})
	}

	return targets, nil
}

// retryPending sets up sources that failed earlier. Sources that succeed
// join the targets; the rest stay pending and are reported as failed.
func (p *Poller) retryPending(ctx context.Context) []PollResult {
	p.setupMu.Lock()
	defer p.setupMu.Unlock()

	p.mu.Lock()
	pending := p.pending
	p.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}

	var (
		still   []Source
		built   []Target
		results []PollResult
	)
	for _, source := range pending {
		targets, err := p.setupSource(ctx, source)
		if err != nil {
			p.recordSetupFailure(ctx, source, err)
			still = append(still, source)
			for _, sub := range source.Entry.Subscriptions() {
				results = append(results, PollResult{UniqueID: sub.UniqueID(), Err: err})
			}
			continue
		}
		p.log.Info().Str("account_id", string(source.Entry.AccountID)).Msg("pending subscription ready")
		built = append(built, targets...)
	}

	p.mu.Lock()
	p.pending = still
	p.targets = append(p.targets, built...)
	p.mu.Unlock()

	return results
}

// recordSetupFailure marks every sensor of source as failed so readers see
// why it is not updating.
func (p *Poller) recordSetupFailure(ctx context.Context, source Source, cause error) {
	p.log.Warn().Err(cause).Str("account_id", string(source.Entry.AccountID)).Msg("subscription setup failed")

	at := p.clock.Now().In(p.cfg.Location)
	for _, sub := range source.Entry.Subscriptions() {
		if err := p.state.RecordFailure(ctx, sub, at, cause); err != nil {
			p.log.Error().Err(err).Str("sensor", sub.UniqueID()).Msg("record setup failure")
		}
	}
}

// Pending returns the sources whose setup has not succeeded yet.
func (p *Poller) Pending() []Source {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Source(nil), p.pending...)
}

func (p *Poller) Targets() []Target {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Target(nil), p.targets...)
}

// PollAll runs one cycle over every target, first retrying the setup of
// pending sources. Subscriptions are independent: a failure only affects its
// own sensor.
func (p *Poller) PollAll(ctx context.Context) CycleReport {
	startedAt := p.clock.Now()
	setupFailures := p.retryPending(ctx)
	targets := p.Targets()
	report := CycleReport{
		ID:        uuid.NewString(),
		StartedAt: startedAt,
		Results:   make([]PollResult, len(targets), len(targets)+len(setupFailures)),
	}
	log := p.log.With().Str("cycle_id", report.ID).Logger()
	log.Debug().Int("targets", len(targets)).Msg("poll cycle started")

	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				report.Results[i] = PollResult{UniqueID: target.Subscription.UniqueID(), Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			report.Results[i] = p.PollOne(ctx, target)
		}()
	}
	wg.Wait()
	report.Results = append(report.Results, setupFailures...)

	report.FinishedAt = p.clock.Now()
	log.Info().
		Int("resolved", report.Resolved()).
		Int("failed", report.Failed()).
		Int("skipped", report.Skipped()).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("poll cycle finished")

	return report
}

// PollOne refreshes a single subscription. A failure keeps the previously
// resolved value and records the error next to it.
func (p *Poller) PollOne(ctx context.Context, target Target) PollResult {
	id := target.Subscription.UniqueID()
	log := p.log.With().Str("sensor", id).Logger()

	lock := p.lockFor(id)
	if !lock.TryLock() {
		log.Warn().Msg("previous poll still running, skipping")
		return PollResult{UniqueID: id, Err: ErrCycleInFlight, Skipped: true}
	}
	defer lock.Unlock()

	pickup, err := p.resolve(ctx, target)
	if err != nil {
		at := p.clock.Now().In(p.cfg.Location)
		if recordErr := p.state.RecordFailure(ctx, target.Subscription, at, err); recordErr != nil {
			log.Error().Err(recordErr).Msg("record poll failure")
		}
		log.Warn().Err(err).Msg("pickup update failed")
		return PollResult{UniqueID: id, Err: err}
	}

	log.Debug().Time("pickup", pickup.Value).Msg("pickup updated")
	return PollResult{UniqueID: id, Pickup: pickup}
}

func (p *Poller) resolve(ctx context.Context, target Target) (domain.ResolvedPickup, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return domain.ResolvedPickup{}, err
	}

	session, err := p.session(ctx, target.Credentials)
	if err != nil {
		return domain.ResolvedPickup{}, err
	}

	sub := target.Subscription
	schedule, err := p.discoverer.PickupSchedule(ctx, session, sub.AccountID, sub.ServiceID)
	if err != nil {
		p.invalidate(ctx, target.Credentials)
		return domain.ResolvedPickup{}, err
	}

	now := p.clock.Now().In(p.cfg.Location)
	value, err := domain.ResolvePickup(schedule, now)
	if err != nil {
		return domain.ResolvedPickup{}, fmt.Errorf("%w: %w", domain.ErrUnknown, err)
	}

	pickup := domain.ResolvedPickup{
		SubscriptionID: sub.UniqueID(),
		Value:          value.In(p.cfg.Location),
		ResolvedAt:     now,
	}
	if err := p.state.RecordResolved(ctx, sub, pickup); err != nil {
		return domain.ResolvedPickup{}, fmt.Errorf("record pickup: %w", err)
	}

	return pickup, nil
}

func (p *Poller) session(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	key := SessionKey(creds.Username)

	cached, ok, err := p.cache.Get(ctx, key)
	switch {
	case err != nil:
		p.log.Warn().Err(err).Msg("session cache read failed")
	case ok && cached.Authorized() && !cached.Expired(p.clock.Now()):
		return cached, nil
	}

	session, err := p.validator.AuthenticateForPoll(ctx, creds)
	if err != nil {
		return domain.Session{}, err
	}

	if err := p.cache.Put(ctx, key, session, p.cfg.SessionTTL); err != nil {
		p.log.Warn().Err(err).Msg("session cache write failed")
	}

	return session, nil
}

func (p *Poller) invalidate(ctx context.Context, creds domain.Credentials) {
	if err := p.cache.Invalidate(ctx, SessionKey(creds.Username)); err != nil {
		p.log.Warn().Err(err).Msg("session cache invalidation failed")
	}
}

func (p *Poller) lockFor(id string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.inflight[id]
	if !ok {
		lock = &sync.Mutex{}
		p.inflight[id] = lock
	}

	return lock
}

// SessionKey derives the cache key for a username without storing it in
// clear.
func SessionKey(username string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(username))))
	return "session:" + hex.EncodeToString(sum[:12])
}
