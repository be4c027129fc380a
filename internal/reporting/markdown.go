package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Ad Revenue Summary\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Period: %d | Business attribute: %s | Countries: %s\n\n",
		r.Context.Period, r.Context.TargetBusinessAttribute, strings.Join(r.Context.Countries, ", ")))
	sb.WriteString(fmt.Sprintf("Transactions: %d | Records: %d\n\n", r.TransactionCount, r.RecordCount))

	// Regions
	for _, sec := range r.Regions {
		sb.WriteString(fmt.Sprintf("## %s\n\n", sec.Region))
		if len(sec.Rows) == 0 {
			sb.WriteString("No metrics available.\n\n")
			continue
		}
		sb.WriteString("| Metric | Label | Value |\n")
		sb.WriteString("|--------|-------|------:|\n")
		for _, row := range sec.Rows {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				row.Metric, row.Metric.Label(), FormatValue(row.Metric, row.Value)))
		}
		sb.WriteString("\n")
	}

	// Reconciliation
	sb.WriteString("## Reconciliation\n\n")
	rec := r.Reconciliation
	if rec.Checks == 0 {
		sb.WriteString("No reconciliation performed.\n\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("Checks: %d | Passed: %d | Failed: %d | Warnings: %d\n\n",
		rec.Checks, rec.Passed, rec.Failed, rec.Warnings))
	if rec.AllChecksPassed {
		sb.WriteString("**All checks passed.**\n\n")
	} else {
		sb.WriteString("**Some checks failed.**\n\n")
	}
	for _, issue := range rec.Issues {
		sb.WriteString(fmt.Sprintf("- %s\n", issue))
	}
	if len(rec.Issues) > 0 {
		sb.WriteString("\n")
	}

	return sb.String()
}
