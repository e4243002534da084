package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var specsCmd = &cobra.Command{
	Use:   "specs",
	Short: "Print the effective transition spec table as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		table, err := cfg.Specs()
		if err != nil {
			return err
		}
		if keys, _ := cmd.Flags().GetBool("keys"); keys {
			for _, k := range table.Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		}
		return table.WriteYAML(cmd.OutOrStdout())
	},
}

func init() {
	specsCmd.Flags().Bool("keys", false, "list only the adjacency keys")
}
