package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialValidatorAuthenticate(t *testing.T) {
	primary := domain.Session{UserID: "u1", SessionToken: "st"}
	authorized := domain.Session{UserID: "u1", AccessToken: "at"}
	upstreamErr := errors.New("boom")

	tests := []struct {
		name      string
		setup     func(up *mocks.MockUpstream)
		wantErr   error
		wantCause error
	}{
		{
			name: "both steps succeed",
			setup: func(up *mocks.MockUpstream) {
				up.EXPECT().Authenticate(mockAnyContext(), "user", "pass").Return(primary, nil)
				up.EXPECT().Authorize(mockAnyContext(), primary).Return(authorized, nil)
			},
		},
		{
			name: "primary rejection",
			setup: func(up *mocks.MockUpstream) {
				up.EXPECT().Authenticate(mockAnyContext(), "user", "pass").Return(domain.Session{}, upstreamErr)
			},
			wantErr:   domain.ErrInvalidAuth,
			wantCause: upstreamErr,
		},
		{
			name: "authorize failure after primary success",
			setup: func(up *mocks.MockUpstream) {
				up.EXPECT().Authenticate(mockAnyContext(), "user", "pass").Return(primary, nil)
				up.EXPECT().Authorize(mockAnyContext(), primary).Return(domain.Session{}, upstreamErr)
			},
			wantErr:   domain.ErrInvalidAuth,
			wantCause: upstreamErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := mocks.NewMockUpstream(t)
			tt.setup(up)

			session, err := NewCredentialValidator(up).Authenticate(context.Background(), domain.Credentials{Username: "user", Password: "pass"})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, tt.wantCause)
				assert.Equal(t, domain.Session{}, session)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, authorized, session)
		})
	}
}

func TestCredentialValidatorAuthenticateForPollReportsUnknown(t *testing.T) {
	up := mocks.NewMockUpstream(t)
	cause := errors.New("401")
	up.EXPECT().Authenticate(mockAnyContext(), "user", "pass").Return(domain.Session{}, cause)

	_, err := NewCredentialValidator(up).AuthenticateForPoll(context.Background(), domain.Credentials{Username: "user", Password: "pass"})
	require.ErrorIs(t, err, domain.ErrUnknown)
	require.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrInvalidAuth)
}
