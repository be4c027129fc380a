package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ad-revenue-lab/internal/verification"
)

// newVerifyCmd reconciles the summary against the ledger
func newVerifyCmd() *cobra.Command {
	var verifyAll bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Reconcile the summary against its ledger rows",
		Long: `The verify sub-command recomputes every revenue cell from its detail rows
and checks headcount additivity, division-by-zero guards, completeness and
that no salesperson is counted in both headcount populations. It exits
non-zero when any check fails; overlapping headcount is reported as a
warning only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, b, err := loadService(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.cleanup()

			rep, err := svc.Verify(ctx, cfg.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(rep.Results))
			for _, r := range rep.Results {
				if r.Pass && !verifyAll {
					continue
				}
				rows = append(rows, []string{string(r.Check), r.Region, status(r), divergenceText(r)})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"check", "region", "status", "divergence"}, rows))
			}

			line := fmt.Sprintf("%d checks: %d passed, %d failed, %d warnings", rep.Checks, rep.Passed, rep.Failed, rep.Warnings)
			if !rep.OK() {
				fmt.Fprintln(out, failStyle.Render(line))
				return fmt.Errorf("reconciliation failed: %d checks", rep.Failed)
			}
			fmt.Fprintln(out, passStyle.Render(line))
			return nil
		},
	}

	cmd.Flags().BoolVar(&verifyAll, "all", false, "list passing checks too")
	return cmd
}

func status(r verification.Result) string {
	switch {
	case r.Pass:
		return passStyle.Render("PASS")
	case r.Warning:
		return warnStyle.Render("WARN")
	default:
		return failStyle.Render("FAIL")
	}
}

func divergenceText(r verification.Result) string {
	if len(r.Divergences) == 0 {
		return ""
	}
	d := r.Divergences[0]
	text := fmt.Sprintf("%s: expected %v, got %v", d.Field, d.Expected, d.Actual)
	if n := len(r.Divergences) - 1; n > 0 {
		text += fmt.Sprintf(" (+%d more)", n)
	}
	return text
}
