package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pterm/pterm"

	"netrecon/internal/core/model"
)

// writeJSON marshals results as a single object when there is exactly
// one (the common single-target case), or as an array when a CIDR or
// multi-host target produced more than one.
func writeJSON(w io.Writer, results []*model.ScanResult, pretty bool) error {
	var v interface{} = results
	if len(results) == 1 {
		v = results[0]
	}

	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal scan result: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// writeTextReport renders the structure spec.md §6 describes: header,
// statistics, open-ports table, per-port detail blocks, once per
// scanned endpoint.
func writeTextReport(w io.Writer, results []*model.ScanResult, color bool) {
	if len(results) == 0 {
		fmt.Fprintln(w, "scan produced no result")
		return
	}

	for i, result := range results {
		if i > 0 {
			fmt.Fprintln(w, "\n---")
		}
		writeTextReportOne(w, result, color)
	}
}

func writeTextReportOne(w io.Writer, result *model.ScanResult, color bool) {
	if result == nil {
		fmt.Fprintln(w, "scan produced no result")
		return
	}

	fmt.Fprintf(w, "Target: %s (%s)\n", result.Target, result.IP)
	fmt.Fprintf(w, "Started: %s  Ended: %s\n", result.StartedAt.Format("2006-01-02 15:04:05"), result.EndedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Techniques: %v\n", result.Techniques)
	fmt.Fprintf(w, "Packets sent: %d  Successful: %d\n\n", result.PacketsSent, result.SuccessfulScans)

	if result.FatalError != "" {
		if color {
			pterm.Error.Println(result.FatalError)
		} else {
			fmt.Fprintln(w, "ERROR:", result.FatalError)
		}
	}

	ports := make([]int, 0, len(result.OpenPorts))
	ports = append(ports, result.OpenPorts...)
	sort.Ints(ports)

	fmt.Fprintln(w, "PORT     STATE  SERVICE       VERSION")
	for _, p := range ports {
		pr := result.Ports[p]
		if pr == nil {
			continue
		}
		fmt.Fprintf(w, "%-8d %-6s %-13s %s\n", p, "open", pr.Service, pr.Version)
	}

	for _, p := range ports {
		pr := result.Ports[p]
		if pr == nil || len(pr.Anomalies) == 0 {
			continue
		}
		fmt.Fprintf(w, "\nport %d anomalies:\n", p)
		for _, a := range pr.Anomalies {
			fmt.Fprintf(w, "  - %s\n", a)
		}
	}
}
