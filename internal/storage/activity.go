package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// AppendActivity appends one event to the activity log.
// A zero CreatedAt is stamped with the current time.
func (s *SQLiteStorage) AppendActivity(ctx context.Context, event ActivityEvent) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to encode activity details: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_activity (user_id, activity_type, query, details, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, event.UserID, event.Type, event.Query, string(details), formatTime(event.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

// RecentActivity returns a user's most recent events, newest first.
func (s *SQLiteStorage) RecentActivity(ctx context.Context, userID string, limit int) ([]ActivityEvent, error) {
	if !s.enabled || s.db == nil {
		return []ActivityEvent{}, nil
	}
	if limit <= 0 {
		limit = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, activity_type, query, details, created_at
		FROM user_activity
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	return s.scanActivity(rows)
}

// ActivitySince returns a user's events of one type at or after since, newest first.
func (s *SQLiteStorage) ActivitySince(ctx context.Context, userID, activityType string, since time.Time) ([]ActivityEvent, error) {
	if !s.enabled || s.db == nil {
		return []ActivityEvent{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, activity_type, query, details, created_at
		FROM user_activity
		WHERE user_id = ? AND activity_type = ? AND created_at >= ?
		ORDER BY created_at DESC, id DESC
	`, userID, activityType, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	return s.scanActivity(rows)
}

// scanActivity decodes activity rows. Rows with unreadable payloads are
// skipped with a warning rather than failing the whole read.
func (s *SQLiteStorage) scanActivity(rows *sql.Rows) ([]ActivityEvent, error) {
	var events []ActivityEvent
	for rows.Next() {
		var (
			event     ActivityEvent
			details   string
			createdAt string
		)
		if err := rows.Scan(&event.ID, &event.UserID, &event.Type, &event.Query, &details, &createdAt); err != nil {
			s.logger.Warn().Err(err).Msg("failed to scan activity row")
			continue
		}

		if err := json.Unmarshal([]byte(details), &event.Details); err != nil {
			s.logger.Warn().Err(err).Int64("id", event.ID).Msg("failed to decode activity details")
			continue
		}

		t, err := parseTime(createdAt)
		if err != nil {
			s.logger.Warn().Err(err).Int64("id", event.ID).Msg("failed to parse activity timestamp")
			continue
		}
		event.CreatedAt = t

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activity: %w", err)
	}
	return events, nil
}
