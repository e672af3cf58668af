package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/tabwriter"
)

// Supported formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// GenerateReport renders r as "text" or "json".
func GenerateReport(r *Report, format string) ([]byte, error) {
	switch format {
	case FormatText, "":
		return generateTextReport(r)
	case FormatJSON:
		return generateJSONReport(r)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func generateJSONReport(r *Report) ([]byte, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(out, '\n'), nil
}

func generateTextReport(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	if len(r.Sources) > 0 {
		tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SOURCE\tACCOUNT\tKIND\tFILES\tFAILED\tROWS\tSKIPPED\tTRANSACTIONS")
		for _, s := range r.Sources {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
				s.Source, s.Account, s.Kind, s.Files, s.FilesFailed, s.RowsRead, s.RowsSkipped, s.Transactions)
		}
		if err := tw.Flush(); err != nil {
			return nil, err
		}
		buf.WriteString("\n")
	}

	tw := tabwriter.NewWriter(&buf, 0, 0, 1, ' ', 0)
	if r.RunID != "" {
		fmt.Fprintf(tw, "Run:\t%s\n", r.RunID)
	}
	fmt.Fprintf(tw, "Rows read:\t%d\n", r.RowsRead)
	fmt.Fprintf(tw, "Rows skipped:\t%d\n", r.RowsSkipped)
	fmt.Fprintf(tw, "Files failed:\t%d\n", r.FilesFailed)
	fmt.Fprintf(tw, "Duplicates removed:\t%d\n", r.DuplicatesRemoved)
	fmt.Fprintf(tw, "Rule hits:\t%d\n", r.RuleHits)
	for _, name := range r.StrategyNames() {
		fmt.Fprintf(tw, "  %s:\t%d\n", name, r.RuleHitsByStrategy[name])
	}
	fmt.Fprintf(tw, "Pairs neutralized:\t%d\n", r.PairsNeutralized)
	fmt.Fprintf(tw, "Ledger size:\t%d\n", r.LedgerSize)
	if !r.DateRange.IsZero() {
		fmt.Fprintf(tw, "Date range:\t%s to %s\n", r.DateRange.From, r.DateRange.To)
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
