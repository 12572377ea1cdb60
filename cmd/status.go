package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/parallax/internal/change"
	"github.com/papapumpkin/parallax/internal/config"
	"github.com/papapumpkin/parallax/internal/graph"
	"github.com/papapumpkin/parallax/internal/workflow"
)

var statusCmd = &cobra.Command{
	Use:   "status <change-id>",
	Short: "Show which workflow artifacts are complete, ready, or blocked",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Bool("watch", false, "reprint status when artifact files change")
	rootCmd.AddCommand(statusCmd)
}

// loadGraph resolves the workflow schema and builds the artifact graph.
func loadGraph(cmd *cobra.Command, cfg config.Config) (*graph.Graph, error) {
	schema, err := workflow.Resolve(workflow.ResolveOptions{
		Path:        cfg.Workflow,
		ProjectRoot: projectRoot(cmd),
	})
	if err != nil {
		return nil, fmt.Errorf("resolving workflow schema: %w", err)
	}
	g, err := graph.FromSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("building artifact graph: %w", err)
	}
	return g, nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	id := args[0]
	proj := project(cmd, cfg)
	watch, _ := cmd.Flags().GetBool("watch")

	if !proj.Exists(id) {
		return fmt.Errorf("%w: %s", change.ErrNotFound, id)
	}

	g, err := loadGraph(cmd, cfg)
	if err != nil {
		return err
	}

	changeDir := proj.Dir(id)
	printStatus(cmd, g, id, changeDir)
	if !watch {
		return nil
	}

	w, err := workflow.NewWatcher(changeDir)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Stop()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	for {
		select {
		case _, ok := <-w.Changes:
			if !ok {
				return nil
			}
			printStatus(cmd, g, id, changeDir)
		case <-interrupt:
			return nil
		}
	}
}

// printStatus recomputes completion from disk and prints the partition.
// Completion is probed fresh on every call, never cached across events.
func printStatus(cmd *cobra.Command, g *graph.Graph, id, changeDir string) {
	p := printer(cmd)
	done := g.DetectCompleted(changeDir)

	p.Header("Change " + id)
	if g.IsComplete(done) {
		p.Status(done, g.BuildOrder(), nil, nil, nil)
		p.Complete()
		return
	}
	p.Status(done, g.BuildOrder(), g.NextArtifacts(done), g.Blocked(done), g.OutOfOrder(done))
}
