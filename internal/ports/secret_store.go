package ports

import "context"

// SecretStore keeps account passwords out of the subscriptions file.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
