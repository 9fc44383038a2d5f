package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func homeEntry() domain.ConfigEntry {
	return domain.ConfigEntry{
		Title:     "Home",
		Username:  "user@example.com",
		SecretRef: SecretKey("A1"),
		AccountID: "A1",
		Services: []domain.Service{
			{ID: "S1", Name: "Trash"},
			{ID: "S2", Name: "Recycling"},
		},
	}
}

func TestServiceSourcesLoadsPasswords(t *testing.T) {
	repo := mocks.NewMockSubscriptionRepository(t)
	store := mocks.NewMockSecretStore(t)
	state := mocks.NewMockPickupStateStore(t)
	service := NewService(repo, store, state)

	repo.EXPECT().List(mockAnyContext()).Return([]domain.ConfigEntry{homeEntry()}, nil)
	store.EXPECT().Get(mockAnyContext(), "wm://A1/password").Return("secret", nil)

	sources, err := service.Sources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, domain.Credentials{Username: "user@example.com", Password: "secret"}, sources[0].Credentials)
}

func TestServiceSourcesSkipsEntriesWithMissingSecret(t *testing.T) {
	repo := mocks.NewMockSubscriptionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewService(repo, store, mocks.NewMockPickupStateStore(t))

	other := homeEntry()
	other.AccountID = "A2"
	other.SecretRef = SecretKey("A2")
	repo.EXPECT().List(mockAnyContext()).Return([]domain.ConfigEntry{homeEntry(), other}, nil)
	store.EXPECT().Get(mockAnyContext(), "wm://A1/password").Return("", domain.ErrSecretNotFound)
	store.EXPECT().Get(mockAnyContext(), "wm://A2/password").Return("secret", nil)

	sources, err := service.Sources(context.Background())
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
	require.Len(t, sources, 1)
	assert.Equal(t, domain.AccountID("A2"), sources[0].Entry.AccountID)
}

func TestServiceRemoveEntryDeletesEntryAndSecret(t *testing.T) {
	repo := mocks.NewMockSubscriptionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewService(repo, store, mocks.NewMockPickupStateStore(t))

	repo.EXPECT().List(mockAnyContext()).Return([]domain.ConfigEntry{homeEntry()}, nil)
	repo.EXPECT().Delete(mockAnyContext(), domain.AccountID("A1")).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), "wm://A1/password").Return(nil)

	require.NoError(t, service.RemoveEntry(context.Background(), "A1"))
}

func TestServiceRemoveEntryRestoresEntryWhenSecretDeleteFails(t *testing.T) {
	repo := mocks.NewMockSubscriptionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewService(repo, store, mocks.NewMockPickupStateStore(t))

	deleteErr := errors.New("keyring locked")
	repo.EXPECT().List(mockAnyContext()).Return([]domain.ConfigEntry{homeEntry()}, nil)
	repo.EXPECT().Delete(mockAnyContext(), domain.AccountID("A1")).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), "wm://A1/password").Return(deleteErr)
	repo.EXPECT().Save(mockAnyContext(), homeEntry()).Return(nil)

	err := service.RemoveEntry(context.Background(), "A1")
	require.ErrorIs(t, err, deleteErr)
}

func TestServiceRemoveEntryIgnoresMissingSecret(t *testing.T) {
	repo := mocks.NewMockSubscriptionRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewService(repo, store, mocks.NewMockPickupStateStore(t))

	repo.EXPECT().List(mockAnyContext()).Return([]domain.ConfigEntry{homeEntry()}, nil)
	repo.EXPECT().Delete(mockAnyContext(), domain.AccountID("A1")).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), "wm://A1/password").Return(domain.ErrSecretNotFound)

	require.NoError(t, service.RemoveEntry(context.Background(), "A1"))
}

func TestServiceRemoveEntryUnknownAccount(t *testing.T) {
	repo := mocks.NewMockSubscriptionRepository(t)
	service := NewService(repo, mocks.NewMockSecretStore(t), mocks.NewMockPickupStateStore(t))

	repo.EXPECT().List(mockAnyContext()).Return(nil, nil)

	err := service.RemoveEntry(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
}

func TestServiceSensorsMergesRecordedState(t *testing.T) {
	repo := mocks.NewMockSubscriptionRepository(t)
	state := mocks.NewMockPickupStateStore(t)
	service := NewService(repo, mocks.NewMockSecretStore(t), state)

	pickup := time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC)
	attempt := time.Date(2026, 10, 19, 0, 1, 0, 0, time.UTC)
	repo.EXPECT().List(mockAnyContext()).Return([]domain.ConfigEntry{homeEntry()}, nil)
	state.EXPECT().List(mockAnyContext()).Return([]domain.PickupSensor{
		{UniqueID: "A1_S1", Name: "Garbage", Value: &pickup, ResolvedAt: attempt, LastAttemptAt: attempt},
		{UniqueID: "A9_S9", Name: "Removed", Value: &pickup},
	}, nil)

	sensors, err := service.Sensors(context.Background())
	require.NoError(t, err)
	require.Len(t, sensors, 2)

	assert.Equal(t, "A1_S1", sensors[0].UniqueID)
	assert.Equal(t, "Garbage", sensors[0].Name)
	assert.True(t, sensors[0].Available())
	assert.Equal(t, domain.SensorIcon, sensors[0].Icon)

	assert.Equal(t, "A1_S2", sensors[1].UniqueID)
	assert.Equal(t, "Recycling", sensors[1].Name)
	assert.False(t, sensors[1].Available())
}

func TestServiceSensorNotFound(t *testing.T) {
	repo := mocks.NewMockSubscriptionRepository(t)
	state := mocks.NewMockPickupStateStore(t)
	service := NewService(repo, mocks.NewMockSecretStore(t), state)

	repo.EXPECT().List(mockAnyContext()).Return([]domain.ConfigEntry{homeEntry()}, nil)
	state.EXPECT().List(mockAnyContext()).Return(nil, nil)

	_, err := service.Sensor(context.Background(), "A1_S3")
	require.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
}

func mockAnyContext() interface{} {
	return mock.Anything
}
