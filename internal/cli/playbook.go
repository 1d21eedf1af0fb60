package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

// NewPlaybookCmd creates the 'playbook' command and its subcommands
func NewPlaybookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playbook",
		Short: "Manage tool playbooks",
	}

	cmd.AddCommand(newPlaybookSetCmd())
	cmd.AddCommand(newPlaybookShowCmd())

	return cmd
}

func newPlaybookSetCmd() *cobra.Command {
	var (
		status       string
		bestUseCases string
		steps        string
	)

	cmd := &cobra.Command{
		Use:   "set <tool>",
		Short: "Create or replace the playbook of a tool",
		Long: `Create or replace the playbook of a tool. Published playbooks feed
the "Best for" clause of explanations; implementation steps are always
added to tailored guidance.

Example:
  toolkit playbook set whisper --status published \
    --best-use-cases "Interview transcription in 90+ languages" \
    --steps "Install locally, then batch-process recordings overnight"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaybookSet(cmd, storage.Playbook{
				ToolSlug:            args[0],
				Status:              status,
				BestUseCases:        bestUseCases,
				ImplementationSteps: steps,
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", storage.PlaybookDraft, "Status: draft or published")
	cmd.Flags().StringVar(&bestUseCases, "best-use-cases", "", "Best use cases text")
	cmd.Flags().StringVar(&steps, "steps", "", "Implementation steps text")

	return cmd
}

func runPlaybookSet(cmd *cobra.Command, p storage.Playbook) error {
	if err := validate.Var(p.Status, "oneof=draft published"); err != nil {
		return fmt.Errorf("invalid status %q: must be draft or published", p.Status)
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
	if _, ok := cat.Get(p.ToolSlug); !ok {
		return fmt.Errorf("unknown tool %q", p.ToolSlug)
	}

	store, err := a.storage(true)
	if err != nil {
		return err
	}
	if err := store.SavePlaybook(cmd.Context(), p); err != nil {
		return err
	}

	a.printf("✓ Saved %s playbook for %s\n", p.Status, p.ToolSlug)
	return nil
}

func newPlaybookShowCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <tool>",
		Short: "Show the playbook of a tool",
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

			p, err := store.PlaybookForTool(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("no playbook for %s", args[0])
			}
			if jsonOut {
				return a.printJSON(p)
			}

			a.printf("Tool:     %s\n", p.ToolSlug)
			a.printf("Status:   %s\n", p.Status)
			a.printf("Best for: %s\n", orDash(p.BestUseCases))
			a.printf("Steps:    %s\n", orDash(p.ImplementationSteps))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}
