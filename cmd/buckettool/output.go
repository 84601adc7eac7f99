package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"buckettool/internal/history"
	"buckettool/pkg/core"
	"buckettool/pkg/evidence"
)

// findingRows renders findings as table rows with a header.
func findingRows(findings []core.Finding) pterm.TableData {
	data := pterm.TableData{{"#", "Vendor", "Check", "Status", "URL", "Detail"}}
	for i, f := range findings {
		data = append(data, []string{
			fmt.Sprint(i + 1),
			f.Vendor.String(),
			string(f.Type),
			fmt.Sprint(evidence.StatusCode(f.Response)),
			f.URL,
			f.Detail,
		})
	}
	return data
}

func printFindings(w io.Writer, target string, findings []core.Finding, verbose bool) error {
	if len(findings) == 0 {
		fmt.Fprintln(w, pterm.Warning.Sprintf("%s: no misconfiguration found", target))
		return nil
	}
	fmt.Fprintln(w, pterm.Success.Sprintf("%s: %d finding(s)", target, len(findings)))
	table, err := pterm.DefaultTable.WithHasHeader().WithData(findingRows(findings)).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	fmt.Fprintln(w, table)

	if verbose {
		for _, f := range findings {
			fmt.Fprintln(w, pterm.DefaultSection.Sprintf("%s %s", f.Vendor, f.Type))
			fmt.Fprintln(w, f.Request)
			fmt.Fprintln(w, f.Response)
		}
	}
	return nil
}

func printHistory(w io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, pterm.Info.Sprint("history is empty"))
		return nil
	}
	data := pterm.TableData{{"Time", "Source", "Vendor", "Check", "URL"}}
	for _, e := range entries {
		data = append(data, []string{
			e.Time.Local().Format("2006-01-02 15:04:05"),
			string(e.Source),
			e.Vendor.String(),
			string(e.Type),
			e.URL,
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	fmt.Fprintln(w, table)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readTargets reads one URL per line; blank lines and # comments are skipped.
func readTargets(r io.Reader) ([]string, error) {
	var targets []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			targets = append(targets, line)
		}
	}
	return targets, sc.Err()
}

func openTargets(path string, stdin io.Reader) ([]string, error) {
	if path == "" || path == "-" {
		return readTargets(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open target list: %w", err)
	}
	defer f.Close()
	return readTargets(f)
}
