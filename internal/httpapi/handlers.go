package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rc-analytics/internal/analytics"
	"rc-analytics/internal/apperr"
	"rc-analytics/internal/metrics"
	"rc-analytics/internal/report"
	"rc-analytics/internal/webhooks"
	"rc-analytics/pkg/logger"
)

// AnalyticsService is the analytics read side the handlers need.
type AnalyticsService interface {
	Summary(ctx context.Context, q analytics.Query) (analytics.Summary, error)
	Daily(ctx context.Context, r analytics.Range) (analytics.Daily, error)
	Communications(ctx context.Context, r analytics.Range, includeLogs bool) (analytics.Communications, error)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Analytics AnalyticsService
	Webhooks  *webhooks.Service

	// Company labels exported reports.
	Company string
	// VerificationToken, when set, must match the Verification-Token header on vendor events.
	VerificationToken string

	// Location decides calendar dates and "today"; nil means UTC.
	Location *time.Location

	Now func() time.Time
}

// Failure messages returned in the envelope "message" field.
const (
	MsgAnalyticsFailed      = "Failed to fetch call analytics"
	MsgDailyFailed          = "Failed to fetch daily call volume"
	MsgCommunicationsFailed = "Failed to fetch communication analytics"
	MsgExportFailed         = "Failed to export report"
	MsgWebhookFailed        = "Error processing webhook"
)

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// fail logs err and writes the failure envelope with the status of its kind.
func fail(c *gin.Context, message string, err error) {
	log := logger.FromGin(c)
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		log.Error(message, "kind", apperr.KindOf(err).String(), "err", err)
	} else {
		log.Warn(message, "kind", apperr.KindOf(err).String(), "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   apperr.PublicMessage(err),
	})
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// rangeParam reads dateFrom/dateTo, accepting fromDate/toDate as aliases.
func (h Handlers) rangeParam(c *gin.Context) (analytics.Range, error) {
	from := c.Query("dateFrom")
	if from == "" {
		from = c.Query("fromDate")
	}
	to := c.Query("dateTo")
	if to == "" {
		to = c.Query("toDate")
	}
	return analytics.ParseRange(from, to, h.now(), h.Location)
}

type summaryResponse struct {
	Success bool `json:"success"`
	analytics.Summary
}

// Summary serves GET /api/analytics.
func (h Handlers) Summary(c *gin.Context) {
	if h.Analytics == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "analytics not configured"})
		return
	}
	r, err := h.rangeParam(c)
	if err != nil {
		fail(c, MsgAnalyticsFailed, err)
		return
	}
	ext := c.Query("extension")
	if ext == "" {
		ext = c.Query("user")
	}
	out, err := h.Analytics.Summary(c.Request.Context(), analytics.Query{Range: r, Extension: ext})
	if err != nil {
		fail(c, MsgAnalyticsFailed, err)
		return
	}
	c.JSON(http.StatusOK, summaryResponse{Success: true, Summary: out})
}

type dailyResponse struct {
	Success bool `json:"success"`
	analytics.Daily
}

// Daily serves GET /api/analytics/daily.
func (h Handlers) Daily(c *gin.Context) {
	if h.Analytics == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "analytics not configured"})
		return
	}
	r, err := h.rangeParam(c)
	if err != nil {
		fail(c, MsgDailyFailed, err)
		return
	}
	out, err := h.Analytics.Daily(c.Request.Context(), r)
	if err != nil {
		fail(c, MsgDailyFailed, err)
		return
	}
	c.JSON(http.StatusOK, dailyResponse{Success: true, Daily: out})
}

type communicationsResponse struct {
	Success bool `json:"success"`
	analytics.Communications
}

// Communications serves GET /api/analytics/extensions.
func (h Handlers) Communications(c *gin.Context) {
	if h.Analytics == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "analytics not configured"})
		return
	}
	r, err := h.rangeParam(c)
	if err != nil {
		fail(c, MsgCommunicationsFailed, err)
		return
	}
	includeLogs, _ := strconv.ParseBool(c.Query("includeLogs"))
	out, err := h.Analytics.Communications(c.Request.Context(), r, includeLogs)
	if err != nil {
		fail(c, MsgCommunicationsFailed, err)
		return
	}
	c.JSON(http.StatusOK, communicationsResponse{Success: true, Communications: out})
}

// Export serves GET /api/reports/export. Filters and sort order follow the dashboard state.
func (h Handlers) Export(c *gin.Context) {
	const op = "httpapi.Export"
	if h.Analytics == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "analytics not configured"})
		return
	}
	format, err := report.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		fail(c, MsgExportFailed, apperr.Validation(op, err.Error()))
		return
	}

	now := h.now()
	if h.Location != nil {
		now = now.In(h.Location)
	}
	rep, err := report.Build(c.Request.Context(), h.Analytics, c.Request.URL.Query(), h.Company, now, h.Location)
	if err != nil {
		fail(c, MsgExportFailed, err)
		return
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, format, rep); err != nil {
		fail(c, MsgExportFailed, err)
		return
	}
	metrics.ReportExported(string(format))

	name := report.Filename(h.Company, format, now)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
