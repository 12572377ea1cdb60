// Package cmd wires the parallax CLI: a spec-driven change workflow where
// changes move propose → specify → design → tasks → implement → archive,
// and archiving folds per-change delta specs into the canonical
// capability specs.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/parallax/internal/change"
	"github.com/papapumpkin/parallax/internal/config"
	"github.com/papapumpkin/parallax/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "parallax",
	Short: "Spec-driven change workflow",
	Long: `Parallax guides changes through a structured workflow and keeps a
durable library of capability specs in sync with per-change deltas.`,
}

// Execute runs the root command, exiting nonzero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .parallax.yaml)")
	rootCmd.PersistentFlags().StringP("root", "C", ".", "project root directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".parallax")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("PARALLAX")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// projectRoot resolves the --root flag.
func projectRoot(cmd *cobra.Command) string {
	root, _ := cmd.Flags().GetString("root")
	if root == "" {
		root = "."
	}
	return root
}

// project builds the change/spec directory locator from the resolved
// project root and config.
func project(cmd *cobra.Command, cfg config.Config) change.Project {
	return change.Project{Root: projectRoot(cmd), ChangesDir: cfg.ChangesDir, SpecsDir: cfg.SpecsDir}
}

// printer builds the standard stderr printer for a command.
func printer(cmd *cobra.Command) *ui.Printer {
	return ui.New(cmd.ErrOrStderr())
}
