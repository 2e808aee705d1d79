package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/dto"
	"github.com/SscSPs/pos_reconciliation/internal/middleware"
	"github.com/SscSPs/pos_reconciliation/internal/utils"
	"github.com/gin-gonic/gin"
)

// saleHandler handles HTTP requests for sales and their returns.
type saleHandler struct {
	saleService   portssvc.SaleSvcFacade
	returnService portssvc.ReturnSvcFacade
}

func newSaleHandler(ss portssvc.SaleSvcFacade, rs portssvc.ReturnSvcFacade) *saleHandler {
	return &saleHandler{saleService: ss, returnService: rs}
}

func registerSaleRoutes(rg *gin.RouterGroup, write gin.HandlerFunc, saleService portssvc.SaleSvcFacade, returnService portssvc.ReturnSvcFacade) {
	h := newSaleHandler(saleService, returnService)

	sales := rg.Group("/sales")
	{
		sales.POST("", write, h.createSale)
		sales.GET("/:saleID", h.getSale)
		sales.GET("/:saleID/profit", h.getSaleProfit)
		sales.POST("/:saleID/return", write, h.returnSale)
		sales.POST("/:saleID/items/:itemID/return", write, h.returnSaleItem)
	}
}

// createSale godoc
// @Summary Record a completed sale
// @Description Freezes the live rate onto the sale. Cash sales credit the drawer, credit sales open a customer debt.
// @Tags sales
// @Accept  json
// @Produce  json
// @Param   sale body dto.CreateSaleRequest true "Sale"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 409 {object} map[string]string "Sale already exists"
// @Failure 422 {object} map[string]string "No live rate"
// @Failure 500 {object} map[string]string "Failed to record sale"
// @Router /sales [post]
func (h *saleHandler) createSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSaleRequest
	if !bindJSON(c, logger, &req, "CreateSale") {
		return
	}

	sale, debt, err := h.saleService.RecordSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "record sale")
		return
	}

	logger.Info("Sale recorded", slog.String("sale_id", sale.ID),
		slog.String("total", utils.FormatWithCurrencyPrecision(sale.Total, sale.Currency)+" "+string(sale.Currency)),
		slog.Bool("is_debt", sale.IsDebt))
	c.JSON(http.StatusCreated, dto.ToSaleResponse(sale, debt))
}

// getSale godoc
// @Summary Get a sale
// @Tags sales
// @Produce  json
// @Param   saleID path string true "Sale ID"
// @Success 200 {object} dto.SaleResponse
// @Failure 404 {object} map[string]string "Sale not found"
// @Failure 500 {object} map[string]string "Failed to retrieve sale"
// @Router /sales/{saleID} [get]
func (h *saleHandler) getSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("sale_id", c.Param("saleID")))

	sale, debt, err := h.saleService.GetSale(c.Request.Context(), c.Param("saleID"))
	if err != nil {
		respondError(c, logger, err, "retrieve sale")
		return
	}
	c.JSON(http.StatusOK, dto.ToSaleResponse(sale, debt))
}

// getSaleProfit godoc
// @Summary Compute the profit of a sale
// @Description Profit in the sale currency using its frozen rate. Suspicious prices are reported as warnings.
// @Tags sales
// @Produce  json
// @Param   saleID path string true "Sale ID"
// @Success 200 {object} dto.ProfitResponse
// @Failure 404 {object} map[string]string "Sale not found"
// @Failure 500 {object} map[string]string "Failed to compute profit"
// @Router /sales/{saleID}/profit [get]
func (h *saleHandler) getSaleProfit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("sale_id", c.Param("saleID")))

	profit, err := h.saleService.ComputeProfit(c.Request.Context(), c.Param("saleID"))
	if err != nil {
		respondError(c, logger, err, "compute profit")
		return
	}
	c.JSON(http.StatusOK, dto.ToProfitResponse(profit))
}

// returnSale godoc
// @Summary Return a whole sale
// @Description Restores stock, refunds the drawer and deletes the sale with its debt.
// @Tags returns
// @Produce  json
// @Param   saleID path string true "Sale ID"
// @Success 200 {object} dto.ReturnResponse
// @Failure 404 {object} map[string]string "Sale not found"
// @Failure 422 {object} map[string]string "Drawer cannot cover the refund"
// @Failure 500 {object} map[string]string "Failed to return sale"
// @Router /sales/{saleID}/return [post]
func (h *saleHandler) returnSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("sale_id", c.Param("saleID")))

	result, err := h.returnService.ReturnSale(c.Request.Context(), c.Param("saleID"))
	if err != nil {
		respondError(c, logger, err, "return sale")
		return
	}

	logger.Info("Sale returned", slog.String("refund", utils.FormatWithCurrencyPrecision(result.Refund, result.RefundCurrency)))
	c.JSON(http.StatusOK, dto.ToReturnResponse(result))
}

// returnSaleItem godoc
// @Summary Return units of one sale line
// @Description Credit sales offset the debt before any cash leaves the drawer.
// @Tags returns
// @Accept  json
// @Produce  json
// @Param   saleID path string true "Sale ID"
// @Param   itemID path string true "Line item ID"
// @Param   body body dto.ReturnItemRequest true "Quantity"
// @Success 200 {object} dto.ReturnResponse
// @Failure 400 {object} map[string]string "Invalid quantity"
// @Failure 404 {object} map[string]string "Sale or line not found"
// @Failure 409 {object} map[string]string "Quantity exceeds what was sold"
// @Failure 500 {object} map[string]string "Failed to return item"
// @Router /sales/{saleID}/items/{itemID}/return [post]
func (h *saleHandler) returnSaleItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("sale_id", c.Param("saleID")), slog.String("item_id", c.Param("itemID")))
	var req dto.ReturnItemRequest
	if !bindJSON(c, logger, &req, "ReturnSaleItem") {
		return
	}

	result, err := h.returnService.ReturnSaleItem(c.Request.Context(), c.Param("saleID"), c.Param("itemID"), req.Quantity)
	if err != nil {
		respondError(c, logger, err, "return item")
		return
	}

	logger.Info("Sale item returned", slog.Int("quantity", result.ReturnedQuantity), slog.Bool("record_deleted", result.RecordDeleted))
	c.JSON(http.StatusOK, dto.ToReturnResponse(result))
}
