package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trash = domain.ServiceSubscription{AccountID: "A1", ServiceID: "S1", DisplayName: "Trash"}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), Config{Path: filepath.Join(t.TempDir(), "state", "pickups.db")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestStoreRecordResolvedRoundTrip(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	zone := time.FixedZone("CDT", -5*60*60)
	value := time.Date(2026, 10, 20, 7, 0, 0, 0, zone)
	resolvedAt := time.Date(2026, 10, 19, 0, 1, 0, 0, zone)
	require.NoError(t, store.RecordResolved(ctx, trash, domain.ResolvedPickup{SubscriptionID: "A1_S1", Value: value, ResolvedAt: resolvedAt}))

	sensor, err := store.Get(ctx, "A1_S1")
	require.NoError(t, err)
	assert.Equal(t, "Trash", sensor.Name)
	assert.Equal(t, domain.SensorIcon, sensor.Icon)
	require.NotNil(t, sensor.Value)
	assert.True(t, value.Equal(*sensor.Value))
	_, offset := sensor.Value.Zone()
	assert.Equal(t, -5*60*60, offset)
	assert.True(t, resolvedAt.Equal(sensor.ResolvedAt))
	assert.Empty(t, sensor.LastError)
}

func TestStoreFailureKeepsPreviousValue(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	value := time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)
	first := time.Date(2026, 10, 19, 5, 1, 0, 0, time.UTC)
	require.NoError(t, store.RecordResolved(ctx, trash, domain.ResolvedPickup{SubscriptionID: "A1_S1", Value: value, ResolvedAt: first}))

	failedAt := first.Add(12 * time.Hour)
	require.NoError(t, store.RecordFailure(ctx, trash, failedAt, errors.New("unknown error: 502")))

	sensor, err := store.Get(ctx, "A1_S1")
	require.NoError(t, err)
	require.NotNil(t, sensor.Value)
	assert.True(t, value.Equal(*sensor.Value))
	assert.True(t, sensor.Available())
	assert.True(t, sensor.Stale())
	assert.True(t, failedAt.Equal(sensor.LastAttemptAt))
	assert.True(t, first.Equal(sensor.ResolvedAt))
	assert.Equal(t, "unknown error: 502", sensor.LastError)

	require.NoError(t, store.RecordResolved(ctx, trash, domain.ResolvedPickup{SubscriptionID: "A1_S1", Value: value, ResolvedAt: failedAt}))
	sensor, err = store.Get(ctx, "A1_S1")
	require.NoError(t, err)
	assert.False(t, sensor.Stale())
}

func TestStoreFailureBeforeFirstSuccessIsUnavailable(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)

	require.NoError(t, store.RecordFailure(context.Background(), trash, time.Now(), errors.New("auth failed")))

	sensors, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sensors, 1)
	assert.False(t, sensors[0].Available())
	assert.True(t, sensors[0].ResolvedAt.IsZero())
}

func TestStoreGetMissing(t *testing.T) {
	t.Parallel()

	_, err := openTestStore(t).Get(context.Background(), "A1_S9")
	require.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
}

func TestStoreListIsOrderedByUniqueID(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	recycling := domain.ServiceSubscription{AccountID: "A1", ServiceID: "S2", DisplayName: "Recycling"}
	require.NoError(t, store.RecordResolved(ctx, recycling, domain.ResolvedPickup{SubscriptionID: "A1_S2", Value: now, ResolvedAt: now}))
	require.NoError(t, store.RecordResolved(ctx, trash, domain.ResolvedPickup{SubscriptionID: "A1_S1", Value: now, ResolvedAt: now}))

	sensors, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sensors, 2)
	assert.Equal(t, "A1_S1", sensors[0].UniqueID)
	assert.Equal(t, "A1_S2", sensors[1].UniqueID)
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pickups.db")
	first, err := Open(context.Background(), Config{Path: path}, zerolog.Nop())
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, first.RecordResolved(context.Background(), trash, domain.ResolvedPickup{SubscriptionID: "A1_S1", Value: now, ResolvedAt: now}))
	require.NoError(t, first.Close())

	second, err := Open(context.Background(), Config{Path: path}, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	sensors, err := second.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, sensors, 1)
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{}, zerolog.Nop())
	require.Error(t, err)
}
