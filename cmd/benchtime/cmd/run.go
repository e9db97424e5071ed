package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psantana5/benchtime/internal/report"
	"github.com/psantana5/benchtime/internal/workload"
)

var (
	runOutput string
	runRepeat int
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [-- command [args...]]",
	Short: "Time a workload",
	Long: `Times the built-in spin workload, or an external command given after --.

Examples:
  benchtime run -n 5000000
  benchtime run --clock cycles --seconds fixed
  benchtime run --label gzip -- gzip -k -f big.tar`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("iterations", "n", 0, "spin iterations (default from config)")
	runCmd.Flags().String("label", "", "label recorded with the result")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", report.FormatTable, "output format: table, json, yaml")
	runCmd.Flags().IntVar(&runRepeat, "repeat", 1, "number of timed runs")

	if err := viper.BindPFlag("run.iterations", runCmd.Flags().Lookup("iterations")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("run.label", runCmd.Flags().Lookup("label")); err != nil {
		panic(err)
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	if runRepeat < 1 {
		return fmt.Errorf("--repeat must be >= 1")
	}

	next := func() workload.Workload { return workload.NewSpin(cfg.Run.Iterations) }
	if dash := cmd.ArgsLenAtDash(); dash >= 0 && dash < len(args) {
		command := args[dash:]
		next = func() workload.Workload { return workload.NewCommand(command[0], command[1:]...) }
	} else if len(args) > 0 {
		return fmt.Errorf("unexpected arguments %v: put the command after --", args)
	}

	ctx := cmd.Context()
	runner, cleanup, err := buildRunner(ctx, cfg.Run.Label, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	results := make([]*report.Result, 0, runRepeat)
	for i := 0; i < runRepeat; i++ {
		res, err := runner.Run(ctx, next())
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return writeResults(os.Stdout, runOutput, results, err)
		}
	}
	return writeResults(os.Stdout, runOutput, results, nil)
}

// writeResults renders results and joins any rendering failure with runErr.
func writeResults(w io.Writer, format string, results []*report.Result, runErr error) error {
	if err := report.Write(w, format, results); err != nil {
		return errors.Join(runErr, fmt.Errorf("write results: %w", err))
	}
	return runErr
}
