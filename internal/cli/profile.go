package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

var validate = validator.New()

// profileInput is the validated form of the 'profile set' flags.
type profileInput struct {
	OrganisationType string `validate:"omitempty,oneof=newsroom freelance ngo academic other"`
	Experience       string `validate:"omitempty,oneof=beginner intermediate advanced"`
	Budget           string `validate:"omitempty,oneof=minimal small medium large"`
	RiskLevel        string `validate:"omitempty,oneof=low medium high"`
	DataSensitivity  string `validate:"omitempty,oneof=public internal pii regulated"`
	DeploymentPref   string `validate:"omitempty,oneof=cloud hybrid sovereign"`
}

// profileFlags maps flag names to profile fields.
var profileFlags = []struct {
	name  string
	usage string
	field func(*storage.Profile) *string
}{
	{"org-type", "Organisation type: newsroom, freelance, ngo, academic, other", func(p *storage.Profile) *string { return &p.OrganisationType }},
	{"role", "Role in the organisation", func(p *storage.Profile) *string { return &p.Role }},
	{"country", "Country", func(p *storage.Profile) *string { return &p.Country }},
	{"experience", "AI experience: beginner, intermediate, advanced", func(p *storage.Profile) *string { return &p.AIExperienceLevel }},
	{"budget", "Budget: minimal, small, medium, large", func(p *storage.Profile) *string { return &p.Budget }},
	{"risk", "Risk level: low, medium, high", func(p *storage.Profile) *string { return &p.RiskLevel }},
	{"sensitivity", "Data sensitivity: public, internal, pii, regulated", func(p *storage.Profile) *string { return &p.DataSensitivity }},
	{"deployment", "Deployment preference: cloud, hybrid, sovereign", func(p *storage.Profile) *string { return &p.DeploymentPref }},
	{"use-cases", "Comma-separated use-case tags", func(p *storage.Profile) *string { return &p.UseCases }},
}

// NewProfileCmd creates the 'profile' command and its subcommands
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage user profiles",
	}

	cmd.AddCommand(newProfileSetCmd())
	cmd.AddCommand(newProfileShowCmd())

	return cmd
}

func newProfileSetCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a user profile",
		Long: `Create or update a user profile. Only the flags given are changed;
pass an empty value to clear a field.

Example:
  toolkit profile set --user alice --org-type freelance --budget minimal \
    --experience beginner --use-cases transcription,fact-checking`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileSet(cmd, userID)
		},
	}

	addUserFlag(cmd, &userID)
	for _, f := range profileFlags {
		cmd.Flags().String(f.name, "", f.usage)
	}

	return cmd
}

func runProfileSet(cmd *cobra.Command, userID string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.storage(true)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	profile, err := store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		profile = storage.Profile{UserID: userID}
	} else if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}

	changed := 0
	for _, f := range profileFlags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, _ := cmd.Flags().GetString(f.name)
		*f.field(&profile) = strings.TrimSpace(v)
		changed++
	}
	if changed == 0 {
		return errors.New("nothing to update: pass at least one profile flag")
	}

	if err := validateProfile(profile); err != nil {
		return err
	}

	if err := store.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	a.printf("✓ Saved profile for %s\n", userID)
	return nil
}

// validateProfile rejects unknown enum values.
func validateProfile(p storage.Profile) error {
	in := profileInput{
		OrganisationType: strings.ToLower(p.OrganisationType),
		Experience:       strings.ToLower(p.AIExperienceLevel),
		Budget:           strings.ToLower(p.Budget),
		RiskLevel:        strings.ToLower(p.RiskLevel),
		DataSensitivity:  strings.ToLower(p.DataSensitivity),
		DeploymentPref:   strings.ToLower(p.DeploymentPref),
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fe := verrs[0]
			return fmt.Errorf("invalid %s %q: must be one of %s", fe.Field(), fe.Value(), fe.Param())
		}
		return err
	}
	return nil
}

func newProfileShowCmd() *cobra.Command {
	var (
		userID  string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileShow(cmd, userID, jsonOut)
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

func runProfileShow(cmd *cobra.Command, userID string, jsonOut bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.storage(true)
	if err != nil {
		return err
	}

	profile, err := store.GetProfile(cmd.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no profile for %s\nCreate one with: toolkit profile set --user %s", userID, userID)
	}
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}

	if jsonOut {
		return a.printJSON(profile)
	}

	a.printf("User:             %s\n", profile.UserID)
	for _, f := range profileFlags {
		a.printf("%-17s %s\n", f.name+":", orDash(*f.field(&profile)))
	}
	return nil
}
