package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	subscriptionsPathKey  = "subscriptions.path"
	subscriptionsFileMode = 0o600
	subscriptionsDirMode  = 0o700
	subscriptionsDir      = ".config/wmp"
	subscriptionsFile     = "subscriptions.toml"
	tempFilePattern       = ".subscriptions-*.toml.tmp"
)

// Repository persists config entries in a TOML file, one entry per account.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SubscriptionRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(subscriptionsPathKey)
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, subscriptionsDir, subscriptionsFile)
	}

	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{path: path, mu: lockForPath(path)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

// Save inserts the entry or replaces the one with the same account id.
func (r *Repository) Save(ctx context.Context, entry domain.ConfigEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid subscription: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(entry)
	updated := false
	for i := range file.Entries {
		if file.Entries[i].AccountID == encoded.AccountID {
			file.Entries[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Entries = append(file.Entries, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) List(ctx context.Context) ([]domain.ConfigEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ConfigEntry, 0, len(file.Entries))
	for _, entry := range file.Entries {
		entries = append(entries, fromSchema(entry))
	}

	return entries, nil
}

func (r *Repository) Delete(ctx context.Context, accountID domain.AccountID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	kept := file.Entries[:0]
	found := false
	for _, entry := range file.Entries {
		if entry.AccountID == string(accountID) {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return fmt.Errorf("%w: account %s", domain.ErrSubscriptionNotFound, accountID)
	}
	file.Entries = kept

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read subscriptions file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode subscriptions file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), subscriptionsDirMode); err != nil {
		return fmt.Errorf("create subscriptions directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode subscriptions file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp subscriptions file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp subscriptions file: %w", err)
	}
	if err := tempFile.Chmod(subscriptionsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp subscriptions file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp subscriptions file: %w", err)
	}
	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace subscriptions file: %w", err)
	}
	cleanup = false

	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve subscriptions path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(entry domain.ConfigEntry) entrySchema {
	encoded := entrySchema{
		Title:      entry.Title,
		Username:   entry.Username,
		SecretRef:  entry.SecretRef,
		AccountID:  string(entry.AccountID),
		ServiceIDs: make([]string, 0, len(entry.Services)),
		Services:   make([]serviceSchema, 0, len(entry.Services)),
	}
	for _, service := range entry.Services {
		encoded.ServiceIDs = append(encoded.ServiceIDs, string(service.ID))
		encoded.Services = append(encoded.Services, serviceSchema{ID: string(service.ID), Name: service.Name})
	}

	return encoded
}

func fromSchema(entry entrySchema) domain.ConfigEntry {
	decoded := domain.ConfigEntry{
		Title:     entry.Title,
		Username:  entry.Username,
		SecretRef: entry.SecretRef,
		AccountID: domain.AccountID(entry.AccountID),
	}

	if len(entry.Services) > 0 {
		for _, service := range entry.Services {
			decoded.Services = append(decoded.Services, domain.Service{ID: domain.ServiceID(service.ID), Name: service.Name})
		}
		return decoded
	}

	for _, id := range entry.ServiceIDs {
		decoded.Services = append(decoded.Services, domain.Service{ID: domain.ServiceID(id), Name: id})
	}

	return decoded
}
