package main

import (
	"fmt"
	"io"

	"github.com/phanxgames/mapmorph"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every transition in the spec table",
	Long: `Resolves each adjacency of the spec table in both directions for a
range of node counts and reports boundary identity and reversal symmetry
violations. Exits non-zero when any check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		counts, _ := cmd.Flags().GetIntSlice("counts")
		verbose, _ := cmd.Flags().GetBool("verbose")
		return runCheck(cmd.OutOrStdout(), cfg, counts, verbose)
	},
}

func init() {
	checkCmd.Flags().IntSlice("counts", []int{2, 3, 5, 8}, "node counts to check on every level")
	checkCmd.Flags().BoolP("verbose", "v", false, "print passing checks too")
}

func runCheck(out io.Writer, cfg mapmorph.Config, counts []int, verbose bool) error {
	table, err := cfg.Specs()
	if err != nil {
		return err
	}
	fn, err := cfg.EasingFunc()
	if err != nil {
		return err
	}
	results := mapmorph.CheckTable(table, fn, cfg.Width, cfg.Height, counts)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s %-7s count=%d index=%d\n  %v\n", r.Key, r.Direction, r.Count, r.Index, r.Err)
		} else if verbose {
			fmt.Fprintf(out, "ok   %s %-7s count=%d index=%d\n", r.Key, r.Direction, r.Count, r.Index)
		}
	}
	fmt.Fprintf(out, "%d checks, %d failed\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}
