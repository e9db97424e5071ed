package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/psantana5/benchtime/internal/clock"
	"github.com/psantana5/benchtime/internal/platform"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show host capabilities and clock sources",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "output JSON")
}

type clockInfo struct {
	Name           string `json:"name"`
	Implementation string `json:"implementation"`
	TicksPerSecond int64  `json:"ticks_per_second"`
	OverheadTicks  int64  `json:"overhead_ticks"`
}

type hostInfo struct {
	Capabilities platform.Capabilities `json:"capabilities"`
	Clocks       []clockInfo           `json:"clocks"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	info := hostInfo{Capabilities: platform.Detect(cmd.Context())}

	for _, name := range clock.Sources() {
		src, err := clock.New(name, cfg.Clock.Divider)
		if err != nil {
			return err
		}
		info.Clocks = append(info.Clocks, clockInfo{
			Name:           name,
			Implementation: src.Name(),
			TicksPerSecond: src.TicksPerSecond(),
			OverheadTicks:  int64(clock.MeasureOverhead(src, clock.DefaultOverheadSamples)),
		})
	}

	if infoJSON {
		output, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	caps := info.Capabilities
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")
	table.Append([]string{"OS / Arch", caps.OS + "/" + caps.Arch})
	if caps.Platform != "" {
		table.Append([]string{"Platform", caps.Platform + " (kernel " + caps.KernelVersion + ")"})
	}
	if caps.CPUModel != "" {
		table.Append([]string{"CPU", fmt.Sprintf("%s @ %.0f MHz", caps.CPUModel, caps.CPUMhz)})
	}
	table.Append([]string{"Cores", fmt.Sprintf("%d logical, %d physical", caps.LogicalCores, caps.PhysicalCores)})
	if caps.MemoryTotalBytes > 0 {
		table.Append([]string{"Memory", fmt.Sprintf("%.1f GiB", float64(caps.MemoryTotalBytes)/(1<<30))})
	}
	table.Append([]string{"Pointer / uintptr / uint32", fmt.Sprintf("%d / %d / %d bytes", caps.Widths.Pointer, caps.Widths.PointerInt, caps.Widths.Uint32)})
	table.Append([]string{"Counters compiled in", strconv.FormatBool(caps.CountersCompiled)})
	table.Append([]string{"Contexts", strconv.Itoa(caps.NumContexts)})
	table.Render()

	fmt.Println()
	clocks := tablewriter.NewWriter(os.Stdout)
	clocks.Header("Source", "Implementation", "Ticks/s", "Overhead (ticks)")
	for _, c := range info.Clocks {
		clocks.Append(c.Name, c.Implementation, strconv.FormatInt(c.TicksPerSecond, 10), strconv.FormatInt(c.OverheadTicks, 10))
	}
	clocks.Render()
	return nil
}
