package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

// activityInput is the validated form of the 'activity record' flags.
type activityInput struct {
	Type    string `validate:"required,oneof=tool_search tool_view browse tool_finder"`
	Query   string `validate:"required_if=Type tool_search"`
	Tool    string `validate:"required_if=Type tool_view"`
	Cluster string `validate:"required_if=Type browse"`
	Need    string `validate:"required_if=Type tool_finder"`
}

// NewActivityCmd creates the 'activity' command and its subcommands
func NewActivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Record and inspect user activity",
	}

	cmd.AddCommand(newActivityRecordCmd())
	cmd.AddCommand(newActivityListCmd())

	return cmd
}

func newActivityRecordCmd() *cobra.Command {
	var (
		userID string
		in     activityInput
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append an event to a user's activity log",
		Long: `Append an event to a user's activity log. Recent searches, browsed
clusters and viewed tools feed the activity component of the fit score.

Examples:
  toolkit activity record --user alice --type tool_search --query "fact check"
  toolkit activity record --user alice --type browse --cluster verification
  toolkit activity record --user alice --type tool_view --tool whisper`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivityRecord(cmd, userID, in)
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().StringVarP(&in.Type, "type", "t", "", "Event type: tool_search, tool_view, browse, tool_finder")
	cmd.Flags().StringVarP(&in.Query, "query", "q", "", "Search query (tool_search)")
	cmd.Flags().StringVar(&in.Tool, "tool", "", "Tool slug (tool_view)")
	cmd.Flags().StringVar(&in.Cluster, "cluster", "", "Cluster slug (browse)")
	cmd.Flags().StringVar(&in.Need, "need", "", "Stated need (tool_finder)")

	return cmd
}

func runActivityRecord(cmd *cobra.Command, userID string, in activityInput) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("invalid activity: %w", err)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.storage(true)
	if err != nil {
		return err
	}

	if in.Tool != "" {
		cat, err := a.catalog()
		if err != nil {
			return err
		}
		if _, ok := cat.Get(in.Tool); !ok {
			return fmt.Errorf("unknown tool %q", in.Tool)
		}
	}

	event := storage.ActivityEvent{
		UserID: userID,
		Type:   in.Type,
		Query:  in.Query,
		Details: storage.ActivityDetails{
			ToolSlug: in.Tool,
			Cluster:  in.Cluster,
			Need:     in.Need,
		},
	}
	if err := store.AppendActivity(cmd.Context(), event); err != nil {
		return err
	}

	a.printf("✓ Recorded %s for %s\n", in.Type, userID)
	return nil
}

func newActivityListCmd() *cobra.Command {
	var (
		userID  string
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show a user's recent activity, newest first",
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

			events, err := store.RecentActivity(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return a.printJSON(events)
			}

			for _, e := range events {
				a.printf("%s  %-21s %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Type, describeEvent(e))
			}
			return nil
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of events")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

func describeEvent(e storage.ActivityEvent) string {
	d := e.Details
	switch {
	case e.Query != "":
		return fmt.Sprintf("%q", e.Query)
	case d.ToolSlug != "":
		return d.ToolSlug
	case d.Cluster != "":
		return d.Cluster
	case d.Need != "":
		return d.Need
	case len(d.ToolSlugs) > 0:
		return strings.Join(d.ToolSlugs, ", ")
	}
	return ""
}
