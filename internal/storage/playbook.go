package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SavePlaybook creates or replaces the playbook of a tool.
func (s *SQLiteStorage) SavePlaybook(ctx context.Context, p Playbook) error {
	if !s.enabled || s.db == nil {
		return nil
	}
	if p.Status == "" {
		p.Status = PlaybookDraft
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_playbooks (tool_slug, status, best_use_cases, implementation_steps, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tool_slug) DO UPDATE SET
			status = excluded.status,
			best_use_cases = excluded.best_use_cases,
			implementation_steps = excluded.implementation_steps,
			updated_at = excluded.updated_at
	`, p.ToolSlug, p.Status, p.BestUseCases, p.ImplementationSteps, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save playbook: %w", err)
	}
	return nil
}

// PlaybookForTool returns a tool's playbook, or nil if none exists.
func (s *SQLiteStorage) PlaybookForTool(ctx context.Context, toolSlug string) (*Playbook, error) {
	if !s.enabled || s.db == nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		p         = Playbook{ToolSlug: toolSlug}
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT status, best_use_cases, implementation_steps, updated_at
		FROM tool_playbooks WHERE tool_slug = ?
	`, toolSlug).Scan(&p.Status, &p.BestUseCases, &p.ImplementationSteps, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load playbook: %w", err)
	}
	if t, err := parseTime(updatedAt); err == nil {
		p.UpdatedAt = t
	}
	return &p, nil
}
