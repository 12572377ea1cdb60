package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/parallax/internal/change"
	"github.com/papapumpkin/parallax/internal/config"
	"github.com/papapumpkin/parallax/internal/specval"
	"github.com/papapumpkin/parallax/internal/sync"
)

var validateCmd = &cobra.Command{
	Use:   "validate <change-id>",
	Short: "Check a change's delta specs without writing anything",
	Long: `Parses every delta spec of the change, applies the merges in memory,
and runs the structural validator over the rebuilt specs. Never writes.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	id := args[0]
	proj := project(cmd, config.Load())
	p := printer(cmd)

	if !proj.Exists(id) {
		return fmt.Errorf("%w: %s", change.ErrNotFound, id)
	}

	updates, err := sync.FindSpecUpdates(proj.Dir(id), proj.SpecsRoot())
	if errors.Is(err, sync.ErrNoDeltas) {
		p.Infof("Change %s has no delta specs.", id)
		return nil
	}
	if err != nil {
		return err
	}

	issues, err := sync.New().Check(updates)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		p.Infof("All %d capability spec(s) are valid.", len(updates))
		return nil
	}

	p.Issues(issues)
	if specval.HasErrors(issues) {
		return fmt.Errorf("validation failed for change %s", id)
	}
	return nil
}
