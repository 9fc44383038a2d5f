package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/wm-pickup-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/wm-pickup-cli/internal/adapters/secrets/pass"
	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
	"github.com/rs/zerolog"
)

// Store writes to the primary backend and falls back when it fails. Reads
// try both in order. Deletes clear both so no stale copy survives.
type Store struct {
	primary  ports.SecretStore
	fallback ports.SecretStore
	log      zerolog.Logger
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary secret store is nil")
	errNilFallbackStore = errors.New("fallback secret store is nil")
)

func NewStore(primary ports.SecretStore, fallback ports.SecretStore, log zerolog.Logger) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback, log: log}, nil
}

func NewPassFirstWithFileFallback(passPrefix string, fileRoot string, log zerolog.Logger) (*Store, error) {
	return NewStore(passstore.NewStore(passPrefix), filestore.NewStore(fileRoot), log)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	err := s.primary.Put(ctx, key, value)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}
	s.log.Debug().Err(err).Msg("primary secret backend put failed, using fallback")

	fallbackErr := s.fallback.Put(ctx, key, value)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr == nil {
		return fallbackValue, nil
	}
	if isMissing(err) && isMissing(fallbackErr) {
		return "", fmt.Errorf("secret %q: %w", key, domain.ErrSecretNotFound)
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	if err != nil && shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Delete(ctx, key)
	if isMissing(err) {
		err = nil
	}
	if isMissing(fallbackErr) {
		fallbackErr = nil
	}

	switch {
	case err != nil && fallbackErr != nil:
		return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
	case fallbackErr != nil:
		return fmt.Errorf("fallback backend delete failed: %w", fallbackErr)
	case err != nil:
		s.log.Debug().Err(err).Msg("primary secret backend delete failed")
	}

	return nil
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// isMissing treats an absent pass binary like an absent entry.
func isMissing(err error) bool {
	return errors.Is(err, domain.ErrSecretNotFound) || errors.Is(err, passstore.ErrUnavailable)
}
