package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Write.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Write renders results in the named format.
func Write(w io.Writer, format string, results []*Result) error {
	switch format {
	case "", FormatTable:
		return WriteTable(w, results)
	case FormatJSON:
		return WriteJSON(w, results)
	case FormatYAML:
		return WriteYAML(w, results)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteTable renders one row per result followed by counter lines.
func WriteTable(w io.Writer, results []*Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Run", "Label", "Clock", "Ticks/s", "Ticks", "Seconds", "Cycles", "Instret", "Portable")
	for _, r := range results {
		cycles, instret := "-", "-"
		if r.Counters.HasDelta() {
			cycles = strconv.FormatUint(r.Counters.CycleDelta, 10)
			instret = strconv.FormatUint(r.Counters.InstretDelta, 10)
		}
		if err := table.Append(
			shortID(r.RunID),
			r.Label,
			r.Clock,
			strconv.FormatInt(r.TicksPerSecond, 10),
			strconv.FormatInt(int64(r.Ticks), 10),
			r.Seconds,
			cycles,
			instret,
			strconv.Itoa(r.PortableID),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, r := range results {
		if r.Counters == nil {
			continue
		}
		for _, line := range r.Counters.Lines() {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteJSON renders results as an indented JSON array.
func WriteJSON(w io.Writer, results []*Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// WriteYAML renders results as a YAML sequence.
func WriteYAML(w io.Writer, results []*Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		return err
	}
	return enc.Close()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
