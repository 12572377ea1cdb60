package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/parallax/internal/change"
	"github.com/papapumpkin/parallax/internal/config"
	"github.com/papapumpkin/parallax/internal/graph"
	"github.com/papapumpkin/parallax/internal/specdoc"
	"github.com/papapumpkin/parallax/internal/sync"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <change-id>",
	Short: "Sync a change's specs and move it to the archive",
	Long: `Folds the change's delta specs into the canonical specs, then moves
the change directory under changes/archive. The spec sync is all-or-
nothing: any failure aborts before anything is written or moved.`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().Bool("skip-specs", false, "archive without updating canonical specs")
	archiveCmd.Flags().Bool("no-validate", false, "skip the structural validation gate")
	archiveCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	id := args[0]
	proj := project(cmd, config.Load())
	skipSpecs, _ := cmd.Flags().GetBool("skip-specs")
	noValidate, _ := cmd.Flags().GetBool("no-validate")
	yes, _ := cmd.Flags().GetBool("yes")
	p := printer(cmd)

	if !proj.Exists(id) {
		return fmt.Errorf("%w: %s", change.ErrNotFound, id)
	}

	if warn := incompleteWarning(cmd, proj, id); warn != "" {
		p.Infof("%s", warn)
	}

	if !yes {
		fmt.Fprintf(cmd.ErrOrStderr(), "Archive change %q? [y/N] ", id)
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			p.Infof("Archive cancelled; no files were changed.")
			return nil
		}
	}

	counts := specdoc.Counts{}
	if !skipSpecs {
		res, err := syncSpecs(p, proj, id, sync.Options{SkipValidate: noValidate})
		if err != nil {
			return err
		}
		if res != nil {
			p.SyncResult(res)
		}
		counts = specTotals(res)
	}

	rec, err := proj.Archive(id, counts)
	if err != nil {
		return err
	}
	p.Infof("Archived %s → %s (record %s)", id, proj.ArchivedDir(id), rec.ID)
	return nil
}

// incompleteWarning returns a notice when the change still has unfinished
// workflow artifacts. Archiving anyway is allowed; the workflow graph is
// advisory here.
func incompleteWarning(cmd *cobra.Command, proj change.Project, id string) string {
	schemaGraph, err := loadGraphQuiet(cmd)
	if err != nil {
		return ""
	}
	done := schemaGraph.DetectCompleted(proj.Dir(id))
	if schemaGraph.IsComplete(done) {
		return ""
	}
	var missing []string
	for _, artifact := range schemaGraph.BuildOrder() {
		if !done[artifact] {
			missing = append(missing, artifact)
		}
	}
	return fmt.Sprintf("Note: change %s has incomplete artifacts: %v", id, missing)
}

func loadGraphQuiet(cmd *cobra.Command) (*graph.Graph, error) {
	return loadGraph(cmd, config.Load())
}
