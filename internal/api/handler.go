package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hako/durafmt"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"ad-revenue-lab/internal/api/response"
	"ad-revenue-lab/internal/config"
	"ad-revenue-lab/internal/dashboard"
	"ad-revenue-lab/internal/detail"
	"ad-revenue-lab/internal/domain"
	"ad-revenue-lab/internal/export"
	"ad-revenue-lab/internal/reporting"
	"ad-revenue-lab/internal/verification"
)

// Handler serves dashboard requests.
type Handler struct {
	svc          *dashboard.Service
	previewLimit int
	started      time.Time
}

// NewHandler creates a handler. A non-positive previewLimit uses
// detail.DefaultPreviewLimit.
func NewHandler(svc *dashboard.Service, previewLimit int) *Handler {
	if previewLimit <= 0 {
		previewLimit = detail.DefaultPreviewLimit
	}
	return &Handler{svc: svc, previewLimit: previewLimit, started: time.Now()}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// StatusResponse describes the active snapshot.
type StatusResponse struct {
	SnapshotID string    `json:"snapshot_id"`
	Source     string    `json:"source"`
	LoadedAt   time.Time `json:"loaded_at"`
	Rows       int       `json:"rows"`
	Periods    []int     `json:"periods"`
	Uptime     string    `json:"uptime"`
}

// Status reports the active snapshot.
func (h *Handler) Status(c *gin.Context) {
	snap, err := h.svc.Snapshot()
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, StatusResponse{
		SnapshotID: snap.ID,
		Source:     snap.Source,
		LoadedAt:   snap.LoadedAt,
		Rows:       snap.Rows,
		Periods:    snap.Periods,
		Uptime:     durafmt.Parse(time.Since(h.started)).LimitFirstN(2).String(),
	})
}

// MetricInfo is one catalogue entry.
type MetricInfo struct {
	Name  string             `json:"name"`
	Label string             `json:"label"`
	Group domain.MetricGroup `json:"group"`
}

// Metrics lists the metric catalogue in canonical order.
func (h *Handler) Metrics(c *gin.Context) {
	out := make([]MetricInfo, 0, domain.MetricCount)
	for _, m := range domain.AllMetrics() {
		out = append(out, MetricInfo{Name: m.String(), Label: m.Label(), Group: m.Group()})
	}
	response.Success(c, out)
}

// Regions lists Global followed by the configured countries.
func (h *Handler) Regions(c *gin.Context) {
	response.Success(c, h.svc.Defaults().Regions())
}

// Record is one summary cell.
type Record struct {
	Region string          `json:"region"`
	Metric string          `json:"metric"`
	Label  string          `json:"label"`
	Group  string          `json:"group"`
	Value  decimal.Decimal `json:"value"`
}

// SummaryResponse is the JSON summary.
type SummaryResponse struct {
	Period            int      `json:"period"`
	BusinessAttribute string   `json:"business_attribute"`
	Regions           []string `json:"regions"`
	Records           []Record `json:"records"`
}

// Summary returns all metric cells for the requested context.
func (h *Handler) Summary(c *gin.Context) {
	ctx, ok := h.context(c)
	if !ok {
		return
	}

	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		summary, err := h.svc.Summary(c.Request.Context(), ctx)
		if err != nil {
			h.fail(c, err)
			return
		}
		out := SummaryResponse{
			Period:            ctx.Period,
			BusinessAttribute: ctx.TargetBusinessAttribute,
			Regions:           summary.Regions(),
			Records:           make([]Record, 0, summary.Len()),
		}
		for _, r := range summary.Records() {
			out.Records = append(out.Records, Record{
				Region: r.Region,
				Metric: r.Metric.String(),
				Label:  r.Metric.Label(),
				Group:  string(r.Metric.Group()),
				Value:  r.Value,
			})
		}
		response.Success(c, out)
	case "csv", "wide", "markdown":
		report, err := h.svc.Report(c.Request.Context(), ctx)
		if err != nil {
			h.fail(c, err)
			return
		}
		switch format {
		case "csv":
			c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(reporting.RenderCSV(report)))
		case "wide":
			c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(reporting.RenderWideCSV(report)))
		default:
			c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(reporting.RenderMarkdown(report)))
		}
	default:
		response.Error(c, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

// Row is one ledger row in a detail preview.
type Row struct {
	TxID              string          `json:"tx_id"`
	Period            int             `json:"period"`
	Department        string          `json:"department"`
	Country           string          `json:"country"`
	AdType            string          `json:"ad_type"`
	AdTypeLabel       string          `json:"ad_type_label"`
	Amount            decimal.Decimal `json:"amount"`
	BusinessAttribute string          `json:"business_attribute"`
	SalespersonID     string          `json:"salesperson_id"`
}

// DetailResponse is a detail preview.
type DetailResponse struct {
	Region      string          `json:"region"`
	Metric      string          `json:"metric"`
	Label       string          `json:"label"`
	Period      int             `json:"period"`
	TotalRows   int             `json:"total_rows"`
	AmountSum   decimal.Decimal `json:"amount_sum"`
	Salespeople int             `json:"salespeople"`
	Approximate bool            `json:"approximate"`
	Rows        []Row           `json:"rows"`
}

// Detail returns the first rows behind one summary cell.
func (h *Handler) Detail(c *gin.Context) {
	res, ok := h.detail(c)
	if !ok {
		return
	}

	limit := h.previewLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	preview := res.Preview(limit)
	out := DetailResponse{
		Region:      res.Region,
		Metric:      res.Metric.String(),
		Label:       res.Metric.Label(),
		Period:      res.Period,
		TotalRows:   res.Len(),
		AmountSum:   res.AmountSum,
		Salespeople: res.Salespeople,
		Approximate: res.Approximate,
		Rows:        make([]Row, 0, len(preview)),
	}
	for _, t := range preview {
		out.Rows = append(out.Rows, Row{
			TxID:              t.TxID,
			Period:            t.Period,
			Department:        t.Department,
			Country:           t.Country,
			AdType:            t.AdType.String(),
			AdTypeLabel:       t.AdType.Label(),
			Amount:            t.Amount,
			BusinessAttribute: t.BusinessAttribute,
			SalespersonID:     t.SalespersonID,
		})
	}
	response.Success(c, out)
}

// Export downloads every row behind one summary cell.
func (h *Handler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	res, ok := h.detail(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, res.Rows); err != nil {
		h.fail(c, err)
		return
	}

	name := export.Filename(res.Region, res.Metric, res.Period, format)
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// VerifyResponse is a reconciliation report.
type VerifyResponse struct {
	OK       bool                  `json:"ok"`
	Checks   int                   `json:"checks"`
	Passed   int                   `json:"passed"`
	Failed   int                   `json:"failed"`
	Warnings int                   `json:"warnings"`
	Issues   []verification.Result `json:"issues"`
}

// Verify reconciles the summary against its ledger rows.
func (h *Handler) Verify(c *gin.Context) {
	ctx, ok := h.context(c)
	if !ok {
		return
	}

	rep, err := h.svc.Verify(c.Request.Context(), ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	out := VerifyResponse{
		OK:       rep.OK(),
		Checks:   rep.Checks,
		Passed:   rep.Passed,
		Failed:   rep.Failed,
		Warnings: rep.Warnings,
		Issues:   []verification.Result{},
	}
	for _, r := range rep.Results {
		if !r.Pass {
			out.Issues = append(out.Issues, r)
		}
	}
	response.Success(c, out)
}

// Reload rebuilds the snapshot from the configured source.
func (h *Handler) Reload(c *gin.Context) {
	snap, err := h.svc.Load(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("reload failed")
		response.Error(c, http.StatusBadGateway, err.Error())
		return
	}
	response.Success(c, gin.H{"snapshot_id": snap.ID, "rows": snap.Rows})
}

// context resolves period and attr query parameters against the defaults.
func (h *Handler) context(c *gin.Context) (domain.Context, bool) {
	period := 0
	if raw := c.Query("period"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err == nil {
			err = config.ValidatePeriod(p)
		}
		if err != nil {
			response.Error(c, http.StatusBadRequest, fmt.Sprintf("invalid period %q", raw))
			return domain.Context{}, false
		}
		period = p
	}
	return h.svc.Context(period, c.Query("attr")), true
}

// detail resolves metric, region and context and runs the selection.
func (h *Handler) detail(c *gin.Context) (*detail.Result, bool) {
	ctx, ok := h.context(c)
	if !ok {
		return nil, false
	}

	m, err := domain.ParseMetric(c.Query("metric"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	region := c.DefaultQuery("region", domain.RegionGlobal)

	res, err := h.svc.Detail(c.Request.Context(), m, region, ctx)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return res, true
}

// fail maps service errors to HTTP statuses.
func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, dashboard.ErrNotLoaded) {
		response.Error(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	response.Error(c, http.StatusInternalServerError, "internal error")
}
