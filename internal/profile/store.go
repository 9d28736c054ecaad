package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Store loads and saves preferences by profile id
type Store interface {
	Load(ctx context.Context, id string) (Preferences, error)
	Save(ctx context.Context, id string, prefs Preferences) error
}

// SQLiteStore keeps each section of the blob in its own JSON column so a
// corrupt section only resets itself
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore wraps an open, migrated database
func NewSQLiteStore(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, logger: logger}
}

// Load returns the stored preferences, or defaults for unknown profiles and
// unreadable sections. Only database failures are returned as errors
func (s *SQLiteStore) Load(ctx context.Context, id string) (Preferences, error) {
	prefs := Default()
	if id == "" {
		return prefs, ErrInvalidID
	}

	var accessibility, statistics string
	err := s.db.QueryRowContext(ctx, `
		SELECT accessibility, statistics
		FROM profiles
		WHERE id = ?
	`, id).Scan(&accessibility, &statistics)
	if errors.Is(err, sql.ErrNoRows) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("loading profile %s: %w", id, err)
	}

	var a Accessibility
	if err := json.Unmarshal([]byte(accessibility), &a); err != nil {
		s.logger.Warn("corrupt accessibility preferences, using defaults", "profileID", id, "error", err)
	} else {
		prefs.Accessibility = a
	}

	var st Statistics
	if err := json.Unmarshal([]byte(statistics), &st); err != nil {
		s.logger.Warn("corrupt statistics, using defaults", "profileID", id, "error", err)
	} else {
		prefs.Statistics = st
	}

	return prefs, nil
}

// Save upserts the full preferences blob
func (s *SQLiteStore) Save(ctx context.Context, id string, prefs Preferences) error {
	if id == "" {
		return ErrInvalidID
	}

	accessibility, err := json.Marshal(prefs.Accessibility)
	if err != nil {
		return fmt.Errorf("encoding accessibility: %w", err)
	}
	statistics, err := json.Marshal(prefs.Statistics)
	if err != nil {
		return fmt.Errorf("encoding statistics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, accessibility, statistics)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			accessibility = excluded.accessibility,
			statistics    = excluded.statistics,
			updated_at    = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, id, string(accessibility), string(statistics))
	if err != nil {
		return fmt.Errorf("saving profile %s: %w", id, err)
	}
	return nil
}

// Check pings the database for health reporting
func (s *SQLiteStore) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
