package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/export"
	"ad-revenue-lab/internal/reporting"
)

// newDetailCmd shows the ledger rows behind one summary cell
func newDetailCmd() *cobra.Command {
	var (
		detailMetric string
		detailRegion string
		detailLimit  int
		detailExport string
		detailOutDir string
	)

	cmd := &cobra.Command{
		Use:   "detail",
		Short: "Show the ledger rows behind one metric cell",
		Long: `The detail sub-command selects the ledger rows that make up one summary
cell, identified by --metric (name or Chinese label) and --region (Global or
a country code). The first rows are previewed; --export writes the full
selection as csv, xlsx or parquet.`,
		Example: `  adboard detail --metric country_revenue --region AU
  adboard detail --metric 全球BD人数 --region Global --export xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := domain.ParseMetric(detailMetric)
			if err != nil {
				return err
			}

			svc, b, err := loadService(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.cleanup()

			res, err := svc.Detail(ctx, m, detailRegion, cfg.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s / %s (%s)", res.Region, m.Label(), m)))

			summary := fmt.Sprintf("%d rows | amount %s | %d salespeople",
				res.Len(), reporting.FormatMoney(res.AmountSum), res.Salespeople)
			fmt.Fprintln(out, subtle.Render(summary))
			if res.Approximate {
				fmt.Fprintln(out, warnStyle.Render("productivity metric: rows shown are the region's total revenue rows"))
			}

			limit := detailLimit
			if limit <= 0 {
				limit = cfg.Detail.PreviewLimit
			}
			fmt.Fprintln(out, previewTable(res.Preview(limit)))
			if res.Len() > limit {
				fmt.Fprintln(out, subtle.Render(fmt.Sprintf("showing %d of %d rows", limit, res.Len())))
			}

			if detailExport == "" {
				return nil
			}
			format, err := export.ParseFormat(detailExport)
			if err != nil {
				return err
			}
			dir := detailOutDir
			if dir == "" {
				dir = cfg.Detail.ExportDir
			}
			path, err := export.WriteFile(dir, export.Filename(res.Region, m, res.Period, format), format, res.Rows)
			if err != nil {
				return err
			}
			log.Info().Str("path", path).Int("rows", res.Len()).Msg("detail exported")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&detailMetric, "metric", "m", "", "metric name or label")
	flags.StringVarP(&detailRegion, "region", "r", domain.RegionGlobal, "Global or a country code")
	flags.IntVarP(&detailLimit, "limit", "n", 0, "preview rows (default detail.preview_limit)")
	flags.StringVar(&detailExport, "export", "", "export format (csv, xlsx, parquet)")
	flags.StringVar(&detailOutDir, "out", "", "export directory (default detail.export_dir)")
	_ = cmd.MarkFlagRequired("metric")
	return cmd
}

func previewTable(txs []*domain.Transaction) string {
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, []string{
			fmt.Sprint(t.Period),
			t.Department,
			t.Country,
			t.AdType.Label(),
			reporting.FormatMoney(t.Amount),
			t.BusinessAttribute,
			t.SalespersonID,
		})
	}
	return renderTable([]string{"period", "department", "country", "ad type", "amount", "attribute", "salesperson"}, rows)
}
