package ports

import (
	"context"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
)

// SessionCache is an opt-in store for authorized sessions.
//
// Entries live at most ttl. Callers must Invalidate an entry as soon as any
// upstream call made with it fails.
type SessionCache interface {
	Get(ctx context.Context, key string) (domain.Session, bool, error)
	Put(ctx context.Context, key string, session domain.Session, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// NopSessionCache never stores anything, so every cycle authenticates.
type NopSessionCache struct{}

func (NopSessionCache) Get(context.Context, string) (domain.Session, bool, error) {
	return domain.Session{}, false, nil
}

func (NopSessionCache) Put(context.Context, string, domain.Session, time.Duration) error {
	return nil
}

func (NopSessionCache) Invalidate(context.Context, string) error {
	return nil
}
