/*
Package storage implements the persistent store behind the recommendation engine.

It keeps user profiles, the append-only activity log (including the
"recommendation_shown" records used for rotation), tool reviews with helpful
votes, and tool playbooks in a single SQLite database using modernc.org/sqlite
(a pure Go, CGo-free implementation).

If the database cannot be opened, the storage is disabled and reads return
empty results so callers degrade instead of failing.
*/
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines the persistent operations used by the toolkit.
type Storage interface {
	// Init opens the database and runs migrations.
	Init() error

	// SaveProfile creates or replaces a user's profile.
	SaveProfile(ctx context.Context, p Profile) error

	// GetProfile returns a user's profile or ErrNotFound.
	GetProfile(ctx context.Context, userID string) (Profile, error)

	// AppendActivity appends one event to the activity log.
	AppendActivity(ctx context.Context, event ActivityEvent) error

	// RecentActivity returns a user's most recent events, newest first.
	RecentActivity(ctx context.Context, userID string, limit int) ([]ActivityEvent, error)

	// ActivitySince returns a user's events of one type at or after since, newest first.
	ActivitySince(ctx context.Context, userID, activityType string, since time.Time) ([]ActivityEvent, error)

	// AddReview stores a review and returns its ID.
	AddReview(ctx context.Context, review Review) (string, error)

	// VoteReview records a helpful / not helpful vote.
	VoteReview(ctx context.Context, reviewID, userID string, helpful bool) error

	// HideReview hides a review from scoring and listings.
	HideReview(ctx context.Context, reviewID, reason string) error

	// ReviewsForTool returns the visible reviews of a tool.
	ReviewsForTool(ctx context.Context, toolSlug string) ([]Review, error)

	// ReviewedBy returns the slugs of tools a user has reviewed (visible reviews only).
	ReviewedBy(ctx context.Context, userID string) ([]string, error)

	// SavePlaybook creates or replaces the playbook of a tool.
	SavePlaybook(ctx context.Context, p Playbook) error

	// PlaybookForTool returns a tool's playbook, or nil if none exists.
	PlaybookForTool(ctx context.Context, toolSlug string) (*Playbook, error)

	// Close closes the database connection.
	Close() error
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	logger   zerolog.Logger
	mu       sync.Mutex
	initOnce sync.Once
}

// NewStorage creates a SQLite storage instance for dbPath.
// The database is opened lazily by Init.
func NewStorage(dbPath string, logger zerolog.Logger) *SQLiteStorage {
	return &SQLiteStorage{
		dbPath:  dbPath,
		enabled: dbPath != "",
		logger:  logger.With().Str("component", "storage").Logger(),
	}
}

// Init initializes the database and runs migrations.
//
// If initialization fails, storage is disabled and subsequent operations
// become no-ops (graceful degradation). The error is still returned so
// callers can report it.
func (s *SQLiteStorage) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			s.enabled = false
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			s.enabled = false
			return
		}
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			s.enabled = false
			return
		}

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			s.enabled = false
			return
		}
	})

	if initErr != nil {
		s.logger.Warn().Err(initErr).Str("path", s.dbPath).Msg("storage disabled")
	}
	return initErr
}

// Enabled reports whether the database is usable.
func (s *SQLiteStorage) Enabled() bool {
	return s.enabled && s.db != nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// formatTime renders timestamps the way they are stored: UTC, second precision.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
