package wm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/adapters/wm"
	"github.com/bnema/wm-pickup-cli/internal/adapters/wm/wmtest"
	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFake(t *testing.T) (*wmtest.Server, *wm.Client) {
	t.Helper()

	server := wmtest.NewServer(wmtest.Fixture{
		Username: "user@example.com",
		Password: "hunter2",
		UserID:   "00u1",
		Accounts: []domain.Account{{ID: "A1", Name: "Home"}, {ID: "A2", Name: "Work"}},
		Services: map[domain.AccountID][]domain.Service{
			"A1": {{ID: "S1", Name: "Trash"}, {ID: "S2", Name: "Recycling"}},
		},
		Pickups: map[string][]string{
			"A1_S1": {"2026-10-20T07:00:00-05:00", "2026-10-27T07:00:00-05:00"},
			"A1_S2": {"2026-10-22"},
		},
	})
	t.Cleanup(server.Close)

	client := wm.NewClient(server.API(), 5*time.Second)
	client.Location = time.UTC
	client.Now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }

	return server, client
}

func login(t *testing.T, client *wm.Client) domain.Session {
	t.Helper()

	session, err := client.Authenticate(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)
	authorized, err := client.Authorize(context.Background(), session)
	require.NoError(t, err)

	return authorized
}

func TestClientAuthenticateAndAuthorize(t *testing.T) {
	t.Parallel()
	_, client := newFake(t)

	session, err := client.Authenticate(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "00u1", session.UserID)
	assert.NotEmpty(t, session.SessionToken)
	assert.False(t, session.Authorized())

	authorized, err := client.Authorize(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, authorized.Authorized())
	assert.Empty(t, authorized.SessionToken)
	assert.Equal(t, "Bearer", authorized.TokenType)
	assert.Equal(t, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), authorized.ExpiresAt)
}

func TestClientAuthenticateRejectsBadPassword(t *testing.T) {
	t.Parallel()
	_, client := newFake(t)

	_, err := client.Authenticate(context.Background(), "user@example.com", "wrong")
	require.ErrorIs(t, err, wm.ErrRejected)

	var statusErr *wm.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 401, statusErr.Code)
	assert.Equal(t, "Authentication failed", statusErr.Message)
}

func TestClientAuthorizeReportsProviderError(t *testing.T) {
	t.Parallel()
	server, client := newFake(t)
	server.FailAuthorize.Store(true)

	session, err := client.Authenticate(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)

	_, err = client.Authorize(context.Background(), session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied: policy evaluation failed")
}

func TestClientAuthorizeSessionTokenIsSingleUse(t *testing.T) {
	t.Parallel()
	_, client := newFake(t)

	session, err := client.Authenticate(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)
	_, err = client.Authorize(context.Background(), session)
	require.NoError(t, err)

	_, err = client.Authorize(context.Background(), session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login_required")
}

func TestClientListsAccountsAndServices(t *testing.T) {
	t.Parallel()
	_, client := newFake(t)
	session := login(t, client)

	accounts, err := client.ListAccounts(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, []domain.Account{{ID: "A1", Name: "Home"}, {ID: "A2", Name: "Work"}}, accounts)

	services, err := client.ListServices(context.Background(), session, "A1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Service{{ID: "S1", Name: "Trash"}, {ID: "S2", Name: "Recycling"}}, services)
}

func TestClientGetPickupSchedule(t *testing.T) {
	t.Parallel()
	_, client := newFake(t)
	session := login(t, client)

	schedule, err := client.GetPickupSchedule(context.Background(), session, "A1", "S1")
	require.NoError(t, err)
	require.Len(t, schedule, 2)
	assert.True(t, time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC).Equal(schedule[0]))

	dateOnly, err := client.GetPickupSchedule(context.Background(), session, "A1", "S2")
	require.NoError(t, err)
	require.Len(t, dateOnly, 1)
	assert.Equal(t, time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC), dateOnly[0])
}

func TestClientResourceCallsRequireAuthorizedSession(t *testing.T) {
	t.Parallel()
	_, client := newFake(t)

	_, err := client.ListServices(context.Background(), domain.Session{UserID: "00u1"}, "A1")
	require.ErrorIs(t, err, wm.ErrUnauthorized)

	_, err = client.ListServices(context.Background(), domain.Session{UserID: "00u1", AccessToken: "forged"}, "A1")
	var statusErr *wm.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 401, statusErr.Code)
}

func TestClientPickupFailureSurfacesStatus(t *testing.T) {
	t.Parallel()
	server, client := newFake(t)
	session := login(t, client)
	server.FailPickups.Store(true)

	_, err := client.GetPickupSchedule(context.Background(), session, "A1", "S1")
	var statusErr *wm.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 502, statusErr.Code)
}
