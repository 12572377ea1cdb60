package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/parallax/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active changes with artifact progress",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	proj := project(cmd, cfg)

	ids, err := proj.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		printer(cmd).Infof("No active changes.")
		return nil
	}

	g, err := loadGraph(cmd, cfg)
	if err != nil {
		return err
	}

	total := len(g.IDs())
	for _, id := range ids {
		done := g.DetectCompleted(proj.Dir(id))
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d/%d artifacts\n", id, len(doneIntersect(done, g.IDs())), total)
	}
	return nil
}

// doneIntersect filters a completion set down to known artifact ids, so
// stray files never inflate progress counts.
func doneIntersect(done map[string]bool, ids []string) []string {
	var out []string
	for _, id := range ids {
		if done[id] {
			out = append(out, id)
		}
	}
	return out
}
