package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/dto"
	"github.com/SscSPs/pos_reconciliation/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for reports and the cash drawer.
type reportingHandler struct {
	reportingService portssvc.ReportingService
	now              func() time.Time
}

func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{reportingService: rs, now: time.Now}
}

func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	rg.GET("/reports/aggregate", h.getAggregate)
	rg.GET("/balance", h.getBalance)
}

// getAggregate godoc
// @Summary Per-currency report for a time window
// @Description Sales and purchases created in [from, to). Defaults to the last 24 hours.
// @Tags reports
// @Produce  json
// @Param   from query string false "Window start (RFC3339)"
// @Param   to query string false "Window end, exclusive (RFC3339)"
// @Success 200 {object} dto.AggregateReportResponse
// @Failure 400 {object} map[string]string "Invalid window"
// @Failure 500 {object} map[string]string "Failed to build report"
// @Router /reports/aggregate [get]
func (h *reportingHandler) getAggregate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	to := h.now().UTC()
	from := to.Add(-24 * time.Hour)
	var err error
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse(time.RFC3339, raw); err != nil {
			logger.Warn("Invalid 'to' query parameter", slog.String("to", raw))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' parameter, expected RFC3339"})
			return
		}
	}
	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse(time.RFC3339, raw); err != nil {
			logger.Warn("Invalid 'from' query parameter", slog.String("from", raw))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' parameter, expected RFC3339"})
			return
		}
	}

	report, err := h.reportingService.Aggregate(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, logger, err, "build report")
		return
	}
	c.JSON(http.StatusOK, dto.ToAggregateReportResponse(report))
}

// getBalance godoc
// @Summary Current cash drawer
// @Tags reports
// @Produce  json
// @Success 200 {object} dto.BalanceResponse
// @Failure 500 {object} map[string]string "Failed to retrieve balance"
// @Router /balance [get]
func (h *reportingHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	balance, err := h.reportingService.GetBalance(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "retrieve balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceResponse(balance))
}
