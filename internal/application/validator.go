package application

import (
	"context"
	"fmt"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
)

// CredentialValidator turns a username and password into an authorized
// session. Both the primary authentication and the authorization exchange
// must succeed. Nothing is retried.
type CredentialValidator struct {
	upstream ports.Upstream
}

func NewCredentialValidator(upstream ports.Upstream) *CredentialValidator {
	return &CredentialValidator{upstream: upstream}
}

// Authenticate is the onboarding path: every failure is reported as
// domain.ErrInvalidAuth with the cause kept in the chain.
func (v *CredentialValidator) Authenticate(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	session, err := v.authorize(ctx, creds)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %w", domain.ErrInvalidAuth, err)
	}

	return session, nil
}

// AuthenticateForPoll is the polling path, where a rejection is just another
// failed cycle.
func (v *CredentialValidator) AuthenticateForPoll(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	session, err := v.authorize(ctx, creds)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %w", domain.ErrUnknown, err)
	}

	return session, nil
}

func (v *CredentialValidator) authorize(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	session, err := v.upstream.Authenticate(ctx, creds.Username, creds.Password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("authenticate: %w", err)
	}

	authorized, err := v.upstream.Authorize(ctx, session)
	if err != nil {
		return domain.Session{}, fmt.Errorf("authorize: %w", err)
	}

	return authorized, nil
}
