package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AddReview stores a review and returns its ID. A user has at most one
// review per tool; a second review replaces the first.
func (s *SQLiteStorage) AddReview(ctx context.Context, review Review) (string, error) {
	if !s.enabled || s.db == nil {
		return "", nil
	}
	if review.Rating < 1 || review.Rating > 5 {
		return "", fmt.Errorf("rating %d out of range [1,5]", review.Rating)
	}

	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_reviews (id, user_id, tool_slug, rating, comment, use_case_tag, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, tool_slug) DO UPDATE SET
			rating = excluded.rating,
			comment = excluded.comment,
			use_case_tag = excluded.use_case_tag
	`, review.ID, review.UserID, review.ToolSlug, review.Rating, review.Comment,
		review.UseCaseTag, formatTime(review.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("failed to add review: %w", err)
	}

	var id string
	if err := s.db.QueryRowContext(ctx,
		"SELECT id FROM tool_reviews WHERE user_id = ? AND tool_slug = ?",
		review.UserID, review.ToolSlug,
	).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to read review id: %w", err)
	}
	return id, nil
}

// VoteReview records a helpful / not helpful vote, replacing any earlier
// vote by the same user.
func (s *SQLiteStorage) VoteReview(ctx context.Context, reviewID, userID string, helpful bool) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_votes (review_id, user_id, is_helpful, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(review_id, user_id) DO UPDATE SET is_helpful = excluded.is_helpful
	`, reviewID, userID, boolToInt(helpful), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to vote on review: %w", err)
	}
	return nil
}

// HideReview hides a review from scoring and listings.
func (s *SQLiteStorage) HideReview(ctx context.Context, reviewID, reason string) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE tool_reviews SET is_hidden = 1, hidden_reason = ? WHERE id = ?",
		reason, reviewID,
	)
	if err != nil {
		return fmt.Errorf("failed to hide review: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReviewsForTool returns the visible reviews of a tool, oldest first, with
// the reviewer's organisation type and helpful-vote count.
func (s *SQLiteStorage) ReviewsForTool(ctx context.Context, toolSlug string) ([]Review, error) {
	if !s.enabled || s.db == nil {
		return []Review{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.user_id, r.tool_slug, r.rating, r.comment, r.use_case_tag, r.created_at,
			COALESCE(p.organisation_type, ''),
			(SELECT COUNT(*) FROM review_votes v WHERE v.review_id = r.id AND v.is_helpful = 1)
		FROM tool_reviews r
		LEFT JOIN profiles p ON p.user_id = r.user_id
		WHERE r.tool_slug = ? AND r.is_hidden = 0
		ORDER BY r.created_at ASC, r.id ASC
	`, toolSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var (
			r         Review
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.ToolSlug, &r.Rating, &r.Comment, &r.UseCaseTag,
			&createdAt, &r.ReviewerOrgType, &r.HelpfulCount); err != nil {
			s.logger.Warn().Err(err).Msg("failed to scan review row")
			continue
		}
		if t, err := parseTime(createdAt); err == nil {
			r.CreatedAt = t
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}
	return reviews, nil
}

// ReviewedBy returns the slugs of tools a user has reviewed (visible reviews only).
func (s *SQLiteStorage) ReviewedBy(ctx context.Context, userID string) ([]string, error) {
	if !s.enabled || s.db == nil {
		return []string{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT tool_slug FROM tool_reviews
		WHERE user_id = ? AND is_hidden = 0
		ORDER BY tool_slug
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviewed tools: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan reviewed tool: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
