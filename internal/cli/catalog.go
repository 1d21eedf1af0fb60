package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khanglvm/editorial-toolkit/internal/catalog"
)

// NewCatalogCmd creates the 'catalog' command and its subcommands
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the tool catalog",
	}

	cmd.AddCommand(newCatalogListCmd())
	cmd.AddCommand(newCatalogSearchCmd())
	cmd.AddCommand(newCatalogClustersCmd())

	return cmd
}

func newCatalogListCmd() *cobra.Command {
	var (
		cluster string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalog tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogList(cmd, cluster, jsonOut)
		},
	}

	cmd.Flags().StringVarP(&cluster, "cluster", "c", "", "Only list tools of this cluster")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

func runCatalogList(cmd *cobra.Command, cluster string, jsonOut bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cat, err := a.catalog()
	if err != nil {
		return err
	}

	tools := cat.All()
	if cluster != "" {
		tools = cat.ByCluster(cluster)
	}
	return printTools(a, tools, jsonOut)
}

func newCatalogSearchCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogSearch(cmd, args[0], jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

func runCatalogSearch(cmd *cobra.Command, query string, jsonOut bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cat, err := a.catalog()
	if err != nil {
		return err
	}

	tools, err := cat.Search(query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return printTools(a, tools, jsonOut)
}

func newCatalogClustersCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "List tool clusters",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cat, err := a.catalog()
			if err != nil {
				return err
			}

			clusters := cat.Clusters()
			if jsonOut {
				return a.printJSON(clusters)
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tNAME\tTOOLS")
			for _, c := range clusters {
				fmt.Fprintf(w, "%s\t%s\t%d\n", c.Slug, c.Name, c.ToolCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

func printTools(a *app, tools []catalog.Tool, jsonOut bool) error {
	if jsonOut {
		return a.printJSON(tools)
	}

	if len(tools) == 0 {
		a.printf("No tools found.\n")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tNAME\tCLUSTER\tC/D/I")
	for _, t := range tools {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d/%d\n",
			t.Slug, t.Name, t.ClusterSlug, t.CDI.Cost, t.CDI.Difficulty, t.CDI.Invasiveness)
	}
	return w.Flush()
}
