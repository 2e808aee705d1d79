package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/dto"
	"github.com/SscSPs/pos_reconciliation/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests for the live exchange rate.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{exchangeRateService: ers}
}

func registerExchangeRateRoutes(rg *gin.RouterGroup, write gin.HandlerFunc, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	rate := rg.Group("/exchange-rate")
	{
		rate.GET("", h.getExchangeRate)
		rate.PUT("", write, h.setExchangeRate)
	}
}

// getExchangeRate godoc
// @Summary Get the live exchange rate
// @Description Returns the USD/IQD rate pair applied to new sales and payments
// @Tags exchange rate
// @Produce  json
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 422 {object} map[string]string "No rate has been set"
// @Failure 500 {object} map[string]string "Failed to retrieve exchange rate"
// @Router /exchange-rate [get]
func (h *exchangeRateHandler) getExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rate, err := h.exchangeRateService.GetCurrentRate(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "retrieve exchange rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// setExchangeRate godoc
// @Summary Replace the live exchange rate
// @Description Sets the USD to IQD rate. The inverse is derived when it is not supplied. Existing sales keep their frozen rate.
// @Tags exchange rate
// @Accept  json
// @Produce  json
// @Param   rate body dto.SetExchangeRateRequest true "Rate"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to set exchange rate"
// @Router /exchange-rate [put]
func (h *exchangeRateHandler) setExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SetExchangeRateRequest
	if !bindJSON(c, logger, &req, "SetExchangeRate") {
		return
	}

	rate, err := h.exchangeRateService.SetCurrentRate(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "set exchange rate")
		return
	}

	logger.Info("Exchange rate updated", slog.String("usd_to_iqd", rate.USDToIQD.String()))
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}
