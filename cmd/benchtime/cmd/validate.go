package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/psantana5/benchtime/internal/diag"
	"github.com/psantana5/benchtime/internal/platform"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the platform type widths",
	Long: `Checks that the pointer-sized integer matches the native pointer width and
that the 32-bit unsigned type is 32 bits. Mismatches are reported; with
--validation fail the command exits non-zero.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	widths := platform.NativeWidths()
	diags := diag.NewLog(logger, diag.DefaultSize)

	res, err := platform.Validate(widths, diags, cfg.ValidationPolicy())

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Check", "Bytes", "Expected", "Status")
	table.Append("pointer-sized integer", strconv.Itoa(widths.PointerInt), strconv.Itoa(widths.Pointer), status(widths.PointerInt == widths.Pointer))
	table.Append("32-bit unsigned", strconv.Itoa(widths.Uint32), "4", status(widths.Uint32 == 4))
	table.Render()

	fmt.Printf("\nPortable ID: %d\n", res.PortableID)
	return err
}

func status(ok bool) string {
	if ok {
		return "OK"
	}
	return "MISMATCH"
}
