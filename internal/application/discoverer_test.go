package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSession = domain.Session{UserID: "u1", AccessToken: "at"}

func TestDiscovererListAccountsIsIdempotentAndDeduplicated(t *testing.T) {
	up := mocks.NewMockUpstream(t)
	up.EXPECT().ListAccounts(mockAnyContext(), testSession).Return([]domain.Account{
		{ID: "A2", Name: "Work"},
		{ID: "A1", Name: "Home"},
		{ID: "A2", Name: "Work duplicate"},
	}, nil).Twice()

	discoverer := NewDiscoverer(up)
	first, err := discoverer.ListAccounts(context.Background(), testSession)
	require.NoError(t, err)
	second, err := discoverer.ListAccounts(context.Background(), testSession)
	require.NoError(t, err)

	want := []domain.Account{{ID: "A2", Name: "Work"}, {ID: "A1", Name: "Home"}}
	assert.Equal(t, want, first)
	assert.Equal(t, first, second)
}

func TestDiscovererListServicesDeduplicates(t *testing.T) {
	up := mocks.NewMockUpstream(t)
	up.EXPECT().ListServices(mockAnyContext(), testSession, domain.AccountID("A1")).Return([]domain.Service{
		{ID: "S1", Name: "Trash"},
		{ID: "S1", Name: "Trash"},
		{ID: "S2", Name: "Recycling"},
	}, nil)

	services, err := NewDiscoverer(up).ListServices(context.Background(), testSession, "A1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Service{{ID: "S1", Name: "Trash"}, {ID: "S2", Name: "Recycling"}}, services)
}

func TestDiscovererWrapsFailuresAsUnknown(t *testing.T) {
	cause := errors.New("503")
	up := mocks.NewMockUpstream(t)
	up.EXPECT().ListAccounts(mockAnyContext(), testSession).Return(nil, cause)
	up.EXPECT().ListServices(mockAnyContext(), testSession, domain.AccountID("A1")).Return(nil, cause)
	up.EXPECT().GetPickupSchedule(mockAnyContext(), testSession, domain.AccountID("A1"), domain.ServiceID("S1")).Return(nil, cause)

	discoverer := NewDiscoverer(up)

	_, err := discoverer.ListAccounts(context.Background(), testSession)
	require.ErrorIs(t, err, domain.ErrUnknown)
	require.ErrorIs(t, err, cause)

	_, err = discoverer.ListServices(context.Background(), testSession, "A1")
	require.ErrorIs(t, err, domain.ErrUnknown)

	_, err = discoverer.PickupSchedule(context.Background(), testSession, "A1", "S1")
	require.ErrorIs(t, err, domain.ErrUnknown)
}

func TestDiscovererPickupScheduleKeepsOrder(t *testing.T) {
	later := time.Date(2026, 10, 27, 7, 0, 0, 0, time.UTC)
	sooner := time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC)
	up := mocks.NewMockUpstream(t)
	up.EXPECT().GetPickupSchedule(mockAnyContext(), testSession, domain.AccountID("A1"), domain.ServiceID("S1")).
		Return(domain.PickupSchedule{later, sooner}, nil)

	schedule, err := NewDiscoverer(up).PickupSchedule(context.Background(), testSession, "A1", "S1")
	require.NoError(t, err)
	assert.Equal(t, domain.PickupSchedule{later, sooner}, schedule)
}
