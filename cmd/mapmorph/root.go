package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/mapmorph"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mapmorph",
	Short: "Preview and verify hierarchical map transitions",
	Long: `mapmorph animates the zoom between nested map levels (ring, cluster,
hallway). It can open an interactive viewer, check a transition spec table
against its geometric invariants, and print the effective table.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().String("spec", "", "spec table file (.yaml, .toml or .json)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging and invariant checks")

	rootCmd.AddCommand(viewCmd, checkCmd, specsCmd)
}

// loadConfig reads the config file named by --config, then applies the
// --spec and --debug overrides.
func loadConfig(cmd *cobra.Command) (mapmorph.Config, error) {
	cfg := mapmorph.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = mapmorph.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if spec, _ := cmd.Flags().GetString("spec"); spec != "" {
		cfg.SpecFile = spec
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}
