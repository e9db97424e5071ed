package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/psantana5/benchtime/internal/report"
	"github.com/psantana5/benchtime/internal/store"
)

var (
	historyLimit  int
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List stored results",
	Long:  `Lists results saved by earlier runs, newest first. Requires store.driver to be sqlite or postgres.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of results")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", report.FormatTable, "output format: table, json, yaml")
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if st == nil {
		return fmt.Errorf("no result store configured (set store.driver)")
	}
	defer st.Close()

	if len(args) == 1 {
		res, err := st.GetResult(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get %s: %w", args[0], err)
		}
		return report.Write(os.Stdout, historyOutput, []*report.Result{res})
	}

	results, err := st.ListResults(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}
	return report.Write(os.Stdout, historyOutput, results)
}
