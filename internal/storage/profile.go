package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SaveProfile creates or replaces a user's profile.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, p Profile) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, organisation_type, role, country, ai_experience_level,
			budget, risk_level, data_sensitivity, deployment_pref, use_cases)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			organisation_type = excluded.organisation_type,
			role = excluded.role,
			country = excluded.country,
			ai_experience_level = excluded.ai_experience_level,
			budget = excluded.budget,
			risk_level = excluded.risk_level,
			data_sensitivity = excluded.data_sensitivity,
			deployment_pref = excluded.deployment_pref,
			use_cases = excluded.use_cases
	`,
		p.UserID, p.OrganisationType, p.Role, p.Country, p.AIExperienceLevel,
		p.Budget, p.RiskLevel, p.DataSensitivity, p.DeploymentPref, p.UseCases,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile returns a user's profile or ErrNotFound.
func (s *SQLiteStorage) GetProfile(ctx context.Context, userID string) (Profile, error) {
	if !s.enabled || s.db == nil {
		return Profile{}, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := Profile{UserID: userID}
	err := s.db.QueryRowContext(ctx, `
		SELECT organisation_type, role, country, ai_experience_level,
			budget, risk_level, data_sensitivity, deployment_pref, use_cases
		FROM profiles WHERE user_id = ?
	`, userID).Scan(
		&p.OrganisationType, &p.Role, &p.Country, &p.AIExperienceLevel,
		&p.Budget, &p.RiskLevel, &p.DataSensitivity, &p.DeploymentPref, &p.UseCases,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}
