package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
	"github.com/bnema/wm-pickup-cli/internal/ports/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticSources struct {
	sources []Source
	err     error
}

func (s staticSources) Sources(context.Context) ([]Source, error) {
	return s.sources, s.err
}

var chicago = time.FixedZone("CDT", -5*60*60)

type pollerFixture struct {
	upstream *mocks.MockUpstream
	state    *mocks.MockPickupStateStore
	clock    *mocks.MockClock
}

func newPollerFixture(t *testing.T, now time.Time) pollerFixture {
	t.Helper()

	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(now).Maybe()

	return pollerFixture{
		upstream: mocks.NewMockUpstream(t),
		state:    mocks.NewMockPickupStateStore(t),
		clock:    clock,
	}
}

func (f pollerFixture) poller(sources SourceLoader, cache ports.SessionCache) *Poller {
	return NewPoller(
		sources,
		NewCredentialValidator(f.upstream),
		NewDiscoverer(f.upstream),
		f.state,
		cache,
		f.clock,
		PollerConfig{Concurrency: 2, Location: chicago, SessionTTL: time.Minute},
		zerolog.Nop(),
	)
}

func (f pollerFixture) expectLogin(times int) {
	f.upstream.EXPECT().Authenticate(mock.Anything, validCreds.Username, validCreds.Password).Return(primarySession, nil).Times(times)
	f.upstream.EXPECT().Authorize(mock.Anything, primarySession).Return(authorizedSession, nil).Times(times)
}

func homeSource() Source {
	return Source{Entry: homeEntry(), Credentials: validCreds}
}

func target(serviceID domain.ServiceID, name string) Target {
	return Target{
		Subscription: domain.ServiceSubscription{AccountID: "A1", ServiceID: serviceID, DisplayName: name},
		Credentials:  validCreds,
	}
}

func TestPollerSetupNamesSensorsFromFreshServices(t *testing.T) {
	f := newPollerFixture(t, time.Now())
	f.expectLogin(1)
	f.upstream.EXPECT().ListServices(mock.Anything, authorizedSession, domain.AccountID("A1")).Return([]domain.Service{
		{ID: "S1", Name: "Garbage"},
	}, nil)

	targets, err := f.poller(staticSources{sources: []Source{homeSource()}}, nil).Setup(context.Background())
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "Garbage", targets[0].Subscription.DisplayName)
	assert.Equal(t, "Recycling", targets[1].Subscription.DisplayName)
	assert.Equal(t, "A1_S2", targets[1].Subscription.UniqueID())
}

func TestPollerSetupNotReadyWhenNothingCanBeBuilt(t *testing.T) {
	f := newPollerFixture(t, time.Now())
	cause := errors.New("503")
	f.upstream.EXPECT().Authenticate(mock.Anything, validCreds.Username, validCreds.Password).Return(domain.Session{}, cause)
	f.state.EXPECT().RecordFailure(mock.Anything, target("S1", "Trash").Subscription, mock.Anything, mock.Anything).Return(nil)
	f.state.EXPECT().RecordFailure(mock.Anything, target("S2", "Recycling").Subscription, mock.Anything, mock.Anything).Return(nil)

	p := f.poller(staticSources{sources: []Source{homeSource()}}, nil)
	_, err := p.Setup(context.Background())
	require.ErrorIs(t, err, domain.ErrNotReady)
	require.ErrorIs(t, err, cause)
	assert.Len(t, p.Pending(), 1)
}

var (
	workCreds      = domain.Credentials{Username: "work@example.com", Password: "s3cret"}
	workSession    = domain.Session{UserID: "u2", SessionToken: "st2"}
	workAuthorized = domain.Session{UserID: "u2", SessionToken: "st2", AccessToken: "at2"}
	workYard       = domain.ServiceSubscription{AccountID: "A2", ServiceID: "S9", DisplayName: "Yard"}
)

func workSource() Source {
	return Source{
		Entry: domain.ConfigEntry{
			Title:     "Work",
			Username:  workCreds.Username,
			SecretRef: SecretKey("A2"),
			AccountID: "A2",
			Services:  []domain.Service{{ID: "S9", Name: "Yard"}},
		},
		Credentials: workCreds,
	}
}

func uniqueIDs(targets []Target) []string {
	ids := make([]string, 0, len(targets))
	for _, target := range targets {
		ids = append(ids, target.Subscription.UniqueID())
	}
	return ids
}

func TestPollerRetriesEntryThatFailedSetup(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, chicago)
	f := newPollerFixture(t, now)
	tomorrow := time.Date(2026, 10, 20, 7, 0, 0, 0, chicago)

	// Home: setup plus one poll per service.
	f.expectLogin(3)
	f.upstream.EXPECT().ListServices(mock.Anything, authorizedSession, domain.AccountID("A1")).Return([]domain.Service{
		{ID: "S1", Name: "Trash"}, {ID: "S2", Name: "Recycling"},
	}, nil)
	f.upstream.EXPECT().GetPickupSchedule(mock.Anything, authorizedSession, domain.AccountID("A1"), mock.Anything).
		Return(domain.PickupSchedule{tomorrow}, nil).Twice()

	// Work: the first sign-in fails, the retry and the poll succeed.
	f.upstream.EXPECT().Authenticate(mock.Anything, workCreds.Username, workCreds.Password).
		Return(domain.Session{}, errors.New("transient 503")).Once()
	f.upstream.EXPECT().Authenticate(mock.Anything, workCreds.Username, workCreds.Password).
		Return(workSession, nil).Twice()
	f.upstream.EXPECT().Authorize(mock.Anything, workSession).Return(workAuthorized, nil).Twice()
	f.upstream.EXPECT().ListServices(mock.Anything, workAuthorized, domain.AccountID("A2")).
		Return([]domain.Service{{ID: "S9", Name: "Yard"}}, nil)
	f.upstream.EXPECT().GetPickupSchedule(mock.Anything, workAuthorized, domain.AccountID("A2"), domain.ServiceID("S9")).
		Return(domain.PickupSchedule{tomorrow}, nil)

	f.state.EXPECT().RecordFailure(mock.Anything, workYard, mock.Anything, mock.Anything).Return(nil).Once()
	f.state.EXPECT().RecordResolved(mock.Anything, mock.Anything, mock.Anything).Return(nil).Times(3)

	p := f.poller(staticSources{sources: []Source{homeSource(), workSource()}}, nil)
	targets, err := p.Setup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A1_S1", "A1_S2"}, uniqueIDs(targets))
	require.Len(t, p.Pending(), 1)

	report := p.PollAll(context.Background())
	assert.Equal(t, 3, report.Resolved())
	assert.Equal(t, 0, report.Failed())
	assert.Contains(t, uniqueIDs(p.Targets()), "A2_S9")
	assert.Empty(t, p.Pending())
}

func TestPollerReportsEntryStillFailingSetup(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, chicago)
	f := newPollerFixture(t, now)
	cause := errors.New("transient 503")

	f.upstream.EXPECT().Authenticate(mock.Anything, workCreds.Username, workCreds.Password).
		Return(domain.Session{}, cause).Twice()
	f.state.EXPECT().RecordFailure(mock.Anything, workYard, mock.Anything, mock.Anything).Return(nil).Twice()

	p := f.poller(staticSources{sources: []Source{workSource()}}, nil)
	_, err := p.Setup(context.Background())
	require.ErrorIs(t, err, domain.ErrNotReady)

	report := p.PollAll(context.Background())
	require.Len(t, report.Results, 1)
	assert.Equal(t, "A2_S9", report.Results[0].UniqueID)
	require.ErrorIs(t, report.Results[0].Err, domain.ErrUnknown)
	assert.Equal(t, 1, report.Failed())
	assert.Len(t, p.Pending(), 1)
}

func TestPollerSetupWithoutEntries(t *testing.T) {
	f := newPollerFixture(t, time.Now())

	_, err := f.poller(staticSources{}, nil).Setup(context.Background())
	require.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
}

func TestPollerSetupKeepsHealthyEntries(t *testing.T) {
	f := newPollerFixture(t, time.Now())
	f.expectLogin(1)
	f.upstream.EXPECT().ListServices(mock.Anything, authorizedSession, domain.AccountID("A1")).Return([]domain.Service{{ID: "S1", Name: "Trash"}}, nil)

	targets, err := f.poller(staticSources{sources: []Source{homeSource()}, err: domain.ErrSecretNotFound}, nil).Setup(context.Background())
	require.NoError(t, err)
	assert.Len(t, targets, 2)
}

func TestPollerPollOneAdvancesPastStaleFirstEntry(t *testing.T) {
	now := time.Date(2026, 10, 19, 0, 1, 0, 0, chicago)
	f := newPollerFixture(t, now)
	f.expectLogin(1)

	yesterday := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	nextWeek := time.Date(2026, 10, 25, 12, 0, 0, 0, time.UTC)
	f.upstream.EXPECT().GetPickupSchedule(mock.Anything, authorizedSession, domain.AccountID("A1"), domain.ServiceID("S1")).
		Return(domain.PickupSchedule{yesterday, nextWeek}, nil)

	var recorded domain.ResolvedPickup
	f.state.EXPECT().RecordResolved(mock.Anything, target("S1", "Trash").Subscription, mock.Anything).
		Run(func(_ context.Context, _ domain.ServiceSubscription, pickup domain.ResolvedPickup) {
			recorded = pickup
		}).
		Return(nil)

	result := f.poller(staticSources{}, nil).PollOne(context.Background(), target("S1", "Trash"))
	require.NoError(t, result.Err)
	assert.True(t, nextWeek.Equal(result.Pickup.Value))
	assert.Equal(t, chicago, result.Pickup.Value.Location())
	assert.Equal(t, "A1_S1", recorded.SubscriptionID)
	assert.True(t, now.Equal(recorded.ResolvedAt))
}

func TestPollerEmptyScheduleRecordsFailure(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, chicago)
	f := newPollerFixture(t, now)
	f.expectLogin(1)
	f.upstream.EXPECT().GetPickupSchedule(mock.Anything, authorizedSession, domain.AccountID("A1"), domain.ServiceID("S1")).
		Return(domain.PickupSchedule{}, nil)
	f.state.EXPECT().RecordFailure(mock.Anything, target("S1", "Trash").Subscription, mock.Anything, mock.Anything).Return(nil)

	result := f.poller(staticSources{}, nil).PollOne(context.Background(), target("S1", "Trash"))
	require.ErrorIs(t, result.Err, domain.ErrUnknown)
	require.ErrorIs(t, result.Err, domain.ErrEmptySchedule)
}

func TestPollerPollAllIsolatesFailures(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, chicago)
	f := newPollerFixture(t, now)
	f.expectLogin(2)

	tomorrow := time.Date(2026, 10, 20, 7, 0, 0, 0, chicago)
	f.upstream.EXPECT().GetPickupSchedule(mock.Anything, authorizedSession, domain.AccountID("A1"), domain.ServiceID("S1")).
		Return(nil, errors.New("502"))
	f.upstream.EXPECT().GetPickupSchedule(mock.Anything, authorizedSession, domain.AccountID("A1"), domain.ServiceID("S2")).
		Return(domain.PickupSchedule{tomorrow}, nil)
	f.state.EXPECT().RecordFailure(mock.Anything, target("S1", "Trash").Subscription, mock.Anything, mock.Anything).Return(nil)
	f.state.EXPECT().RecordResolved(mock.Anything, target("S2", "Recycling").Subscription, mock.Anything).Return(nil)

	p := f.poller(staticSources{}, nil)
	p.targets = []Target{target("S1", "Trash"), target("S2", "Recycling")}

	report := p.PollAll(context.Background())
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 1, report.Resolved())
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 0, report.Skipped())
}

func TestPollerReauthenticatesEveryCycleByDefault(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, chicago)
	f := newPollerFixture(t, now)
	f.expectLogin(2)
	f.upstream.EXPECT().GetPickupSchedule(mock.Anything, authorizedSession, domain.AccountID("A1"), domain.ServiceID("S1")).
		Return(domain.PickupSchedule{now}, nil).Twice()
	f.state.EXPECT().RecordResolved(mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

	p := f.poller(staticSources{}, nil)
	for range 2 {
		require.NoError(t, p.PollOne(context.Background(), target("S1", "Trash")).Err)
	}
}

func TestPollerUsesCachedSessionAndInvalidatesOnFailure(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, chicago)
	f := newPollerFixture(t, now)
	cache := mocks.NewMockSessionCache(t)
	key := SessionKey(validCreds.Username)

	cache.EXPECT().Get(mock.Anything, key).Return(authorizedSession, true, nil)
	f.upstream.EXPECT().GetPickupSchedule(mock.Anything, authorizedSession, domain.AccountID("A1"), domain.ServiceID("S1")).
		Return(nil, errors.New("401"))
	cache.EXPECT().Invalidate(mock.Anything, key).Return(nil)
	f.state.EXPECT().RecordFailure(mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result := f.poller(staticSources{}, cache).PollOne(context.Background(), target("S1", "Trash"))
	require.ErrorIs(t, result.Err, domain.ErrUnknown)
}

func TestPollerStoresFreshSessionInCache(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, chicago)
	f := newPollerFixture(t, now)
	cache := mocks.NewMockSessionCache(t)
	key := SessionKey(validCreds.Username)

	cache.EXPECT().Get(mock.Anything, key).Return(domain.Session{}, false, nil)
	f.expectLogin(1)
	cache.EXPECT().Put(mock.Anything, key, authorizedSession, time.Minute).Return(nil)
	f.upstream.EXPECT().GetPickupSchedule(mock.Anything, authorizedSession, domain.AccountID("A1"), domain.ServiceID("S1")).
		Return(domain.PickupSchedule{now}, nil)
	f.state.EXPECT().RecordResolved(mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result := f.poller(staticSources{}, cache).PollOne(context.Background(), target("S1", "Trash"))
	require.NoError(t, result.Err)
}

func TestPollerSkipsSubscriptionAlreadyInFlight(t *testing.T) {
	f := newPollerFixture(t, time.Now())
	p := f.poller(staticSources{}, nil)

	lock := p.lockFor("A1_S1")
	lock.Lock()
	defer lock.Unlock()

	result := p.PollOne(context.Background(), target("S1", "Trash"))
	assert.True(t, result.Skipped)
	require.ErrorIs(t, result.Err, ErrCycleInFlight)
}

func TestSessionKeyIsStableAndOpaque(t *testing.T) {
	assert.Equal(t, SessionKey("User@Example.com "), SessionKey("user@example.com"))
	assert.NotContains(t, SessionKey("user@example.com"), "example")
}
