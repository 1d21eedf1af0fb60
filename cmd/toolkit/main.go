/*
Package main is the entry point for the toolkit CLI.

toolkit recommends AI tools to journalists and newsrooms. It ranks a curated
catalog against a user's profile, recent activity and peer reviews, explains
every recommendation with citations, and tailors training and rollout advice.

Usage:
  toolkit [command]

Available Commands:
  recommend   Recommend tools for a user
  guidance    Show personalised guidance for one tool
  suggest     Show the short suggestion list for a UI location
  catalog     Browse the tool catalog
  profile     Manage user profiles
  activity    Record and inspect user activity
  review      Manage tool reviews
  playbook    Manage tool playbooks
  version     Show version information

Examples:
  # Describe a user
  toolkit profile set --user alice --org-type freelance --budget minimal

  # Get recommendations and remember what was shown
  toolkit recommend --user alice --record
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khanglvm/editorial-toolkit/internal/cli"
	buildinfo "github.com/khanglvm/editorial-toolkit/internal/version"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	buildinfo.Version, buildinfo.Commit, buildinfo.Date = version, commit, date

	rootCmd := &cobra.Command{
		Use:   "toolkit",
		Short: "AI tool recommendations for journalists",
		Long: `toolkit recommends AI tools to journalists and newsrooms.

Each tool in the catalog carries a Cost/Difficulty/Invasiveness (CDI) score.
Recommendations combine five signals into a 0-100 fit score:
  • CDI fit           - how well the tool fits budget, experience and data sensitivity
  • Use-case match    - overlap with the user's declared use cases
  • Review signal     - peer ratings, weighted toward similar organisations
  • Activity          - recent searches, browsed clusters and viewed tools
  • Profile fit       - organisation-specific adjustments

Configuration is read from --config, TOOLKIT_CONFIG, ./toolkit.yaml or
~/.editorial-toolkit/config.yaml, then TOOLKIT_* environment variables.`,
		Version:       buildinfo.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(cli.NewRecommendCmd())
	rootCmd.AddCommand(cli.NewGuidanceCmd())
	rootCmd.AddCommand(cli.NewSuggestCmd())
	rootCmd.AddCommand(cli.NewCatalogCmd())
	rootCmd.AddCommand(cli.NewProfileCmd())
	rootCmd.AddCommand(cli.NewActivityCmd())
	rootCmd.AddCommand(cli.NewReviewCmd())
	rootCmd.AddCommand(cli.NewPlaybookCmd())
	rootCmd.AddCommand(cli.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
