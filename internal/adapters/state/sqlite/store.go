package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed migrations.sql
var migrationsFS embed.FS

const timeLayout = time.RFC3339Nano

type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// Store is the sqlite-backed pickup state. Every write is a single-row
// upsert, so readers never see a partially updated sensor.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

var _ ports.PickupStateStore = (*Store)(nil)

type pickupRow struct {
	UniqueID      string         `db:"unique_id"`
	AccountID     string         `db:"account_id"`
	ServiceID     string         `db:"service_id"`
	Name          string         `db:"name"`
	Value         sql.NullString `db:"value"`
	ResolvedAt    sql.NullString `db:"resolved_at"`
	LastAttemptAt string         `db:"last_attempt_at"`
	LastError     string         `db:"last_error"`
}

func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			log.Debug().Err(err).Str("pragma", pragma).Msg("sqlite pragma ignored")
		}
	}

	st := &Store{db: db, log: log.With().Str("component", "state").Logger()}
	if err := st.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return st, nil
}

func (s *Store) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, string(b)); err != nil {
		return fmt.Errorf("migrate state database: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) RecordResolved(ctx context.Context, sub domain.ServiceSubscription, pickup domain.ResolvedPickup) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pickups(unique_id, account_id, service_id, name, value, resolved_at, last_attempt_at, last_error)
		VALUES(?, ?, ?, ?, ?, ?, ?, '')
		ON CONFLICT(unique_id) DO UPDATE SET
			name = excluded.name,
			value = excluded.value,
			resolved_at = excluded.resolved_at,
			last_attempt_at = excluded.last_attempt_at,
			last_error = ''
	`,
		sub.UniqueID(), string(sub.AccountID), string(sub.ServiceID), sub.DisplayName,
		pickup.Value.Format(timeLayout), pickup.ResolvedAt.Format(timeLayout), pickup.ResolvedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record pickup %s: %w", sub.UniqueID(), err)
	}

	return nil
}

// RecordFailure leaves value and resolved_at untouched.
func (s *Store) RecordFailure(ctx context.Context, sub domain.ServiceSubscription, at time.Time, cause error) error {
	message := "unknown error"
	if cause != nil {
		message = cause.Error()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pickups(unique_id, account_id, service_id, name, value, resolved_at, last_attempt_at, last_error)
		VALUES(?, ?, ?, ?, NULL, NULL, ?, ?)
		ON CONFLICT(unique_id) DO UPDATE SET
			name = excluded.name,
			last_attempt_at = excluded.last_attempt_at,
			last_error = excluded.last_error
	`,
		sub.UniqueID(), string(sub.AccountID), string(sub.ServiceID), sub.DisplayName,
		at.Format(timeLayout), message,
	)
	if err != nil {
		return fmt.Errorf("record failure %s: %w", sub.UniqueID(), err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]domain.PickupSensor, error) {
	var rows []pickupRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM pickups ORDER BY unique_id`); err != nil {
		return nil, fmt.Errorf("list pickups: %w", err)
	}

	sensors := make([]domain.PickupSensor, 0, len(rows))
	for _, row := range rows {
		sensor, err := row.toSensor()
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, sensor)
	}

	return sensors, nil
}

func (s *Store) Get(ctx context.Context, uniqueID string) (domain.PickupSensor, error) {
	var row pickupRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM pickups WHERE unique_id = ?`, uniqueID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PickupSensor{}, fmt.Errorf("%w: %s", domain.ErrSubscriptionNotFound, uniqueID)
	}
	if err != nil {
		return domain.PickupSensor{}, fmt.Errorf("get pickup %s: %w", uniqueID, err)
	}

	return row.toSensor()
}

func (r pickupRow) toSensor() (domain.PickupSensor, error) {
	sensor := domain.NewPickupSensor(domain.ServiceSubscription{
		AccountID:   domain.AccountID(r.AccountID),
		ServiceID:   domain.ServiceID(r.ServiceID),
		DisplayName: r.Name,
	})
	sensor.UniqueID = r.UniqueID
	sensor.LastError = r.LastError

	var err error
	if sensor.LastAttemptAt, err = time.Parse(timeLayout, r.LastAttemptAt); err != nil {
		return domain.PickupSensor{}, fmt.Errorf("decode last_attempt_at for %s: %w", r.UniqueID, err)
	}
	if r.Value.Valid {
		value, err := time.Parse(timeLayout, r.Value.String)
		if err != nil {
			return domain.PickupSensor{}, fmt.Errorf("decode value for %s: %w", r.UniqueID, err)
		}
		sensor.Value = &value
	}
	if r.ResolvedAt.Valid {
		if sensor.ResolvedAt, err = time.Parse(timeLayout, r.ResolvedAt.String); err != nil {
			return domain.PickupSensor{}, fmt.Errorf("decode resolved_at for %s: %w", r.UniqueID, err)
		}
	}

	return sensor, nil
}
