package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int           `toml:"version"`
	Entries []entrySchema `toml:"entries"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported subscriptions schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

// entrySchema keeps service_ids next to the named services so the file
// stays readable by hand; services wins when both are present.
type entrySchema struct {
	Title      string          `toml:"title"`
	Username   string          `toml:"username"`
	SecretRef  string          `toml:"secret_ref"`
	AccountID  string          `toml:"account_id"`
	ServiceIDs []string        `toml:"service_ids"`
	Services   []serviceSchema `toml:"services,omitempty"`
}

type serviceSchema struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}
