package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

// reviewInput is the validated form of the 'review add' flags.
type reviewInput struct {
	Rating  int    `validate:"min=1,max=5"`
	Comment string `validate:"max=2000"`
	UseCase string
}

// NewReviewCmd creates the 'review' command and its subcommands
func NewReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Manage tool reviews",
	}

	cmd.AddCommand(newReviewAddCmd())
	cmd.AddCommand(newReviewListCmd())
	cmd.AddCommand(newReviewVoteCmd())
	cmd.AddCommand(newReviewHideCmd())

	return cmd
}

func newReviewAddCmd() *cobra.Command {
	var (
		userID string
		in     reviewInput
	)

	cmd := &cobra.Command{
		Use:   "add <tool>",
		Short: "Rate a tool (1-5)",
		Long: `Rate a tool from 1 to 5. A user has one review per tool; adding
another replaces it. Reviewed tools are no longer recommended to the reviewer.

Example:
  toolkit review add whisper --user alice --rating 5 --use-case transcription \
    --comment "Accurate on noisy interview audio"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewAdd(cmd, userID, args[0], in)
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().IntVarP(&in.Rating, "rating", "r", 0, "Rating from 1 to 5 (required)")
	cmd.Flags().StringVarP(&in.Comment, "comment", "m", "", "Review text")
	cmd.Flags().StringVar(&in.UseCase, "use-case", "", "Use case the tool was used for")
	_ = cmd.MarkFlagRequired("rating")

	return cmd
}

func runReviewAdd(cmd *cobra.Command, userID, slug string, in reviewInput) error {
	if err := validate.Struct(in); err != nil {
		return errors.New("invalid review: rating must be 1-5 and comment at most 2000 characters")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cat, err := a.catalog()
	if err != nil {
		return err
	}
	if _, ok := cat.Get(slug); !ok {
		return fmt.Errorf("unknown tool %q", slug)
	}

	store, err := a.storage(true)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	id, err := store.AddReview(ctx, storage.Review{
		UserID:     userID,
		ToolSlug:   slug,
		Rating:     in.Rating,
		Comment:    in.Comment,
		UseCaseTag: in.UseCase,
	})
	if err != nil {
		return err
	}
	a.reviews.Invalidate(slug)

	event := storage.ActivityEvent{
		UserID:  userID,
		Type:    storage.ActivityToolReview,
		Details: storage.ActivityDetails{ToolSlug: slug},
	}
	if err := store.AppendActivity(ctx, event); err != nil {
		a.logger.Warn().Err(err).Msg("failed to record review activity")
	}

	a.printf("✓ Saved review %s\n", id)
	return nil
}

func newReviewListCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list <tool>",
		Aliases: []string{"ls"},
		Short:   "List the visible reviews of a tool",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.storage(true)
			if err != nil {
				return err
			}

			reviews, err := store.ReviewsForTool(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return a.printJSON(reviews)
			}
			if len(reviews) == 0 {
				a.printf("No reviews for %s.\n", args[0])
				return nil
			}

			for _, r := range reviews {
				a.printf("%s  %d/5  %s (%s, %d helpful)\n", r.ID, r.Rating, r.UserID, orDash(r.ReviewerOrgType), r.HelpfulCount)
				if r.Comment != "" {
					a.printf("    %s\n", r.Comment)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

func newReviewVoteCmd() *cobra.Command {
	var (
		userID     string
		notHelpful bool
	)

	cmd := &cobra.Command{
		Use:   "vote <review-id>",
		Short: "Mark a review as helpful",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.storage(true)
			if err != nil {
				return err
			}

			if err := store.VoteReview(cmd.Context(), args[0], userID, !notHelpful); err != nil {
				return err
			}
			a.printf("✓ Vote recorded\n")
			return nil
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().BoolVar(&notHelpful, "not-helpful", false, "Vote the review as not helpful")

	return cmd
}

func newReviewHideCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "hide <review-id>",
		Short: "Hide a review from scoring and listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.storage(true)
			if err != nil {
				return err
			}

			err = store.HideReview(cmd.Context(), args[0], reason)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("review %s not found", args[0])
			}
			if err != nil {
				return err
			}
			a.printf("✓ Hidden review %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Moderation reason")

	return cmd
}
