// Package cli formats command output for the kbagent CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/keyword"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteAnswer writes an answer to w in the given format.
func WriteAnswer(w io.Writer, a *models.Answer, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}
	fmt.Fprintln(w, a.Answer)
	if a.Mode == models.ModeLive && a.Model != "" {
		fmt.Fprintf(w, "\n[model: %s, tokens: %d in / %d out]\n",
			a.Model, a.Usage.InputTokens, a.Usage.OutputTokens)
	}
	if len(a.Citations) > 0 {
		fmt.Fprintln(w, "\nCited passages:")
		for _, c := range a.Citations {
			fmt.Fprintf(w, "  %s chunk %d\n", c.DocumentID, c.ChunkIndex)
		}
	}
	for _, s := range a.Sources {
		fmt.Fprintf(w, "\n--- %s (%s) ---\n%s\n", s.Name, s.Mode, s.Answer)
	}
	return nil
}

// WriteKeywordResults writes keyword search results to w in the given format.
func WriteKeywordResults(w io.Writer, results []keyword.KeywordResult, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "No results.")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. %s [%s] score %.4f\n", i+1, r.Filename, r.Category, r.Score)
		if r.Fragment != "" {
			fmt.Fprintf(w, "   %s\n", r.Fragment)
		}
	}
	return nil
}
