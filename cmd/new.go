package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/parallax/internal/config"
)

var newCmd = &cobra.Command{
	Use:   "new <change-id>",
	Short: "Scaffold a new change with a proposal skeleton",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proj := project(cmd, config.Load())
		if err := proj.Create(args[0]); err != nil {
			return err
		}
		printer(cmd).Infof("Created %s", proj.Dir(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
