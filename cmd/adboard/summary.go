package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/reporting"
)

// newSummaryCmd prints the metric summary
func newSummaryCmd() *cobra.Command {
	var summaryFormat string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the fifteen metrics for Global and every country",
		Long: `The summary sub-command loads the ledger, computes every metric for the
configured period and prints them. Formats: table (one column per region),
json, csv (long), wide (one row per region) and markdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, b, err := loadService(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.cleanup()

			report, err := svc.Report(ctx, cfg.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch summaryFormat {
			case "table":
				fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Ad revenue summary %d", report.Context.Period)))
				fmt.Fprintln(out, subtle.Render(fmt.Sprintf("business attribute %s | %d transactions",
					report.Context.TargetBusinessAttribute, report.TransactionCount)))
				fmt.Fprintln(out, summaryTable(report))
				if !report.Reconciliation.AllChecksPassed {
					fmt.Fprintln(out, failStyle.Render("reconciliation failed, run `adboard verify` for details"))
				}
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summaryJSON(report))
			case "csv":
				fmt.Fprint(out, reporting.RenderCSV(report))
			case "wide":
				fmt.Fprint(out, reporting.RenderWideCSV(report))
			case "markdown":
				fmt.Fprint(out, reporting.RenderMarkdown(report))
			default:
				return fmt.Errorf("unknown format %q", summaryFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&summaryFormat, "format", "f", "table", "output format (table, json, csv, wide, markdown)")
	return cmd
}

// summaryTable lays metrics out as rows and regions as columns.
func summaryTable(r *reporting.Report) string {
	headers := []string{"metric"}
	for _, sec := range r.Regions {
		headers = append(headers, sec.Region)
	}

	rows := make([][]string, 0, domain.MetricCount)
	for _, m := range domain.AllMetrics() {
		row := []string{m.Label()}
		for _, sec := range r.Regions {
			v, _ := r.Value(sec.Region, m)
			row = append(row, reporting.FormatValue(m, v))
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows)
}

type jsonRecord struct {
	Region string `json:"region"`
	Metric string `json:"metric"`
	Label  string `json:"label"`
	Value  string `json:"value"`
}

type jsonSummary struct {
	Period            int          `json:"period"`
	BusinessAttribute string       `json:"business_attribute"`
	Countries         string       `json:"countries"`
	Transactions      int          `json:"transactions"`
	Reconciled        bool         `json:"reconciled"`
	Records           []jsonRecord `json:"records"`
}

func summaryJSON(r *reporting.Report) jsonSummary {
	out := jsonSummary{
		Period:            r.Context.Period,
		BusinessAttribute: r.Context.TargetBusinessAttribute,
		Countries:         strings.Join(r.Context.Countries, ","),
		Transactions:      r.TransactionCount,
		Reconciled:        r.Reconciliation.AllChecksPassed,
	}
	for _, sec := range r.Regions {
		for _, row := range sec.Rows {
			out.Records = append(out.Records, jsonRecord{
				Region: row.Region,
				Metric: row.Metric.String(),
				Label:  row.Metric.Label(),
				Value:  reporting.RawValue(row.Metric, row.Value),
			})
		}
	}
	return out
}
