package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/parallax/internal/change"
	"github.com/papapumpkin/parallax/internal/config"
	"github.com/papapumpkin/parallax/internal/specdoc"
	"github.com/papapumpkin/parallax/internal/sync"
	"github.com/papapumpkin/parallax/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync <change-id>",
	Short: "Fold a change's delta specs into the canonical specs",
	Long: `Applies every delta spec of the change to the corresponding canonical
capability spec. The batch is all-or-nothing: any parse, merge, or
validation failure aborts before a single file is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().Bool("no-validate", false, "skip the structural validation gate")
	syncCmd.Flags().Bool("dry-run", false, "prepare and validate but write nothing")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	id := args[0]
	proj := project(cmd, config.Load())
	noValidate, _ := cmd.Flags().GetBool("no-validate")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	p := printer(cmd)

	if !proj.Exists(id) {
		return fmt.Errorf("%w: %s", change.ErrNotFound, id)
	}

	res, err := syncSpecs(p, proj, id, sync.Options{SkipValidate: noValidate, DryRun: dryRun})
	if err != nil {
		return err
	}
	if res == nil {
		p.Infof("Change %s has no delta specs; nothing to sync.", id)
		return nil
	}
	if dryRun {
		p.Infof("Dry run; no files were changed.")
	}
	p.SyncResult(res)
	return nil
}

// syncSpecs runs discovery plus the orchestrator for one change. A nil
// result with nil error means the change has no delta specs — a terminal,
// non-error state. Validation failures are printed per issue and returned
// after the explicit no-files-changed notice.
func syncSpecs(p *ui.Printer, proj change.Project, id string, opts sync.Options) (*sync.Result, error) {
	updates, err := sync.FindSpecUpdates(proj.Dir(id), proj.SpecsRoot())
	if errors.Is(err, sync.ErrNoDeltas) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	res, err := sync.New().Run(updates, opts)
	if err != nil {
		var vf *sync.ValidationFailure
		if errors.As(err, &vf) {
			p.Issues(vf.Issues)
		}
		var wf *sync.WriteFailure
		if errors.As(err, &wf) {
			// The write phase has no rollback; report what landed.
			for _, w := range wf.Written {
				p.Errorf("already written: %s", w)
			}
			return nil, err
		}
		p.Aborted(err)
		return nil, err
	}
	return res, nil
}

// specTotals extracts totals from a possibly-nil sync result.
func specTotals(res *sync.Result) specdoc.Counts {
	if res == nil {
		return specdoc.Counts{}
	}
	return res.Totals
}
