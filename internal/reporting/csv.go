package reporting

import (
	"fmt"
	"strings"

	"ad-revenue-lab/internal/domain"
)

// RenderCSV renders metric cells in long format, one row per cell.
func RenderCSV(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("region,metric,label,value\n")

	// Rows
	for _, sec := range r.Regions {
		for _, row := range sec.Rows {
			sb.WriteString(fmt.Sprintf("%s,%s,%s,%s\n",
				row.Region,
				row.Metric,
				row.Metric.Label(),
				RawValue(row.Metric, row.Value),
			))
		}
	}

	return sb.String()
}

// RenderWideCSV renders one row per region and one column per metric.
func RenderWideCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("region")
	for _, m := range domain.AllMetrics() {
		sb.WriteString("," + m.String())
	}
	sb.WriteString("\n")

	for _, sec := range r.Regions {
		sb.WriteString(sec.Region)
		for _, m := range domain.AllMetrics() {
			v, _ := r.Value(sec.Region, m)
			sb.WriteString("," + RawValue(m, v))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
