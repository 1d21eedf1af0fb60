package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/editorial-toolkit/internal/recommend"
)

// NewRecommendCmd creates the 'recommend' command
func NewRecommendCmd() *cobra.Command {
	var (
		userID      string
		query       string
		useCase     string
		limit       int
		record      bool
		jsonOut     bool
		showContext bool
	)

	cmd := &cobra.Command{
		Use:     "recommend",
		Aliases: []string{"rec"},
		Short:   "Recommend tools for a user",
		Long: `Rank catalog tools for a user from their profile, recent activity
and peer reviews, and explain each recommendation.

Tools the user has already reviewed are skipped. Tools shown to the user
within the cooldown window are pushed down so repeat visits see variety.

Examples:
  toolkit recommend --user alice
  toolkit recommend --user alice --query "transcribe interviews"
  toolkit recommend --user alice --use-case verification --limit 3 --record`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, userID, recommend.Request{
				Query:       query,
				UseCase:     useCase,
				Limit:       limit,
				RecordShown: record,
			}, jsonOut, showContext)
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().StringVarP(&query, "query", "q", "", "Restrict to tools matching a search query")
	cmd.Flags().StringVar(&useCase, "use-case", "", "Restrict to a cluster slug or use-case tag")
	cmd.Flags().IntVarP(&limit, "limit", "n", recommend.MaxRecommendations, "Maximum number of recommendations")
	cmd.Flags().BoolVar(&record, "record", false, "Record the results as shown (affects rotation)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&showContext, "explain-context", false, "Print the user context used for scoring")

	return cmd
}

func runRecommend(cmd *cobra.Command, userID string, req recommend.Request, jsonOut, showContext bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.service()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	profile := a.profile(ctx, userID)

	recs, err := svc.GetRecommendations(ctx, profile, req)
	if err != nil {
		return err
	}

	if jsonOut {
		return a.printJSON(recs)
	}

	if showContext {
		a.printf("User context (%s):\n", userID)
		for _, line := range svc.Context(ctx, profile).Summary() {
			a.printf("  %s\n", line)
		}
		a.printf("\n")
	}

	if len(recs) == 0 {
		a.printf("No recommendations for %s.\n", userID)
		return nil
	}

	a.printf("Recommendations for %s:\n\n", userID)
	for i, rec := range recs {
		a.printf("%d. %s (%s) fit %.1f\n", i+1, rec.ToolName, rec.ToolSlug, rec.FitScore)
		a.printf("   %s\n", rec.Explanation)
		b := rec.Breakdown
		a.printf("   cdi %.1f | use case %.1f | reviews %.1f | activity %.1f | profile %.1f\n",
			b.CDIFit, b.UseCaseMatch, b.ReviewSignal, b.ActivityRelevance, b.ProfileFit)
	}
	return nil
}

// NewGuidanceCmd creates the 'guidance' command
func NewGuidanceCmd() *cobra.Command {
	var (
		userID  string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "guidance <tool>",
		Short: "Show personalised guidance for one tool",
		Long: `Score one tool for a user and print a training plan, rollout approach
and workflow tips tailored to their experience, risk level and data sensitivity.

Example:
  toolkit guidance whisper --user alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuidance(cmd, userID, args[0], jsonOut)
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

func runGuidance(cmd *cobra.Command, userID, slug string, jsonOut bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.service()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	g, err := svc.GetToolGuidance(ctx, a.profile(ctx, userID), slug)
	if err != nil {
		return err
	}

	if jsonOut {
		return a.printJSON(g)
	}

	a.printf("%s (%s) fit %.1f\n", g.Tool.Name, g.Tool.Slug, g.Score)
	a.printf("%s\n\n", g.Explanation)

	plan := g.Guidance.TrainingPlan
	a.printf("Training: %s, %s\n", plan.Intensity, plan.Duration)
	for _, step := range plan.Steps {
		a.printf("  - %s\n", step)
	}

	rollout := g.Guidance.RolloutApproach
	a.printf("\nRollout: %s\n", rollout.Pace)
	for _, phase := range rollout.Phases {
		a.printf("  - %s (%s): %s\n", phase.Name, phase.Duration, phase.Description)
	}
	if len(rollout.Gates) > 0 {
		a.printf("  Gates: %s\n", strings.Join(rollout.Gates, "; "))
	}

	if len(g.Guidance.WorkflowTips) > 0 {
		a.printf("\nTips:\n")
		for _, tip := range g.Guidance.WorkflowTips {
			a.printf("  - %s\n", tip)
		}
	}

	if len(g.Citations) > 0 {
		a.printf("\nSources:\n")
		for _, c := range g.Citations {
			a.printf("  [%s] %s\n", c.Type, formatCitation(c))
		}
	}
	return nil
}

func formatCitation(c recommend.Citation) string {
	if c.Source == "" {
		return c.Text
	}
	return fmt.Sprintf("%s (%s)", c.Text, c.Source)
}

// NewSuggestCmd creates the 'suggest' command
func NewSuggestCmd() *cobra.Command {
	var (
		userID  string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "suggest <location>",
		Short: "Show the short suggestion list for a UI location",
		Long: `Print the suggestions shown at a location: home (3), tool_detail (2),
cluster (3) or finder (5). Unknown locations show 3.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"home", "tool_detail", "cluster", "finder"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd, userID, recommend.Location(args[0]), jsonOut)
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

func runSuggest(cmd *cobra.Command, userID string, loc recommend.Location, jsonOut bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.service()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	recs, err := svc.GetSuggestedForLocation(ctx, a.profile(ctx, userID), loc)
	if err != nil {
		return err
	}

	if jsonOut {
		return a.printJSON(recs)
	}
	for _, rec := range recs {
		a.printf("%-24s %5.1f  %s\n", rec.ToolSlug, rec.FitScore, rec.Explanation)
	}
	return nil
}
