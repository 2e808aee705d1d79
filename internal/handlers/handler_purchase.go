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

// purchaseHandler handles HTTP requests for purchases, their returns and stock levels.
type purchaseHandler struct {
	purchaseService portssvc.PurchaseSvcFacade
	returnService   portssvc.ReturnSvcFacade
}

func newPurchaseHandler(ps portssvc.PurchaseSvcFacade, rs portssvc.ReturnSvcFacade) *purchaseHandler {
	return &purchaseHandler{purchaseService: ps, returnService: rs}
}

func registerPurchaseRoutes(rg *gin.RouterGroup, write gin.HandlerFunc, purchaseService portssvc.PurchaseSvcFacade, returnService portssvc.ReturnSvcFacade) {
	h := newPurchaseHandler(purchaseService, returnService)

	purchases := rg.Group("/purchases")
	{
		purchases.POST("", write, h.createPurchase)
		purchases.GET("/:purchaseID", h.getPurchase)
		purchases.POST("/:purchaseID/return", write, h.returnPurchase)
		purchases.POST("/:purchaseID/items/:itemID/return", write, h.returnPurchaseItem)
	}

	stock := rg.Group("/stock")
	{
		stock.GET("/:itemRef", h.getStock)
		stock.PUT("/:itemRef", write, h.setStock)
	}
}

// createPurchase godoc
// @Summary Record a completed purchase
// @Description Debits the drawer in the purchase currency and adds the lines to stock.
// @Tags purchases
// @Accept  json
// @Produce  json
// @Param   purchase body dto.CreatePurchaseRequest true "Purchase"
// @Success 201 {object} dto.PurchaseResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 422 {object} map[string]string "Drawer cannot cover the purchase"
// @Failure 500 {object} map[string]string "Failed to record purchase"
// @Router /purchases [post]
func (h *purchaseHandler) createPurchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePurchaseRequest
	if !bindJSON(c, logger, &req, "CreatePurchase") {
		return
	}

	purchase, err := h.purchaseService.RecordPurchase(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "record purchase")
		return
	}

	logger.Info("Purchase recorded", slog.String("purchase_id", purchase.ID),
		slog.String("total", utils.FormatWithCurrencyPrecision(purchase.Total, purchase.Currency)+" "+string(purchase.Currency)))
	c.JSON(http.StatusCreated, dto.ToPurchaseResponse(purchase))
}

// getPurchase godoc
// @Summary Get a purchase
// @Tags purchases
// @Produce  json
// @Param   purchaseID path string true "Purchase ID"
// @Success 200 {object} dto.PurchaseResponse
// @Failure 404 {object} map[string]string "Purchase not found"
// @Failure 500 {object} map[string]string "Failed to retrieve purchase"
// @Router /purchases/{purchaseID} [get]
func (h *purchaseHandler) getPurchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("purchase_id", c.Param("purchaseID")))

	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), c.Param("purchaseID"))
	if err != nil {
		respondError(c, logger, err, "retrieve purchase")
		return
	}
	c.JSON(http.StatusOK, dto.ToPurchaseResponse(purchase))
}

// returnPurchase godoc
// @Summary Return a whole purchase to the supplier
// @Description Removes the lines from stock and credits the drawer with the purchase total.
// @Tags returns
// @Produce  json
// @Param   purchaseID path string true "Purchase ID"
// @Success 200 {object} dto.ReturnResponse
// @Failure 404 {object} map[string]string "Purchase not found"
// @Failure 500 {object} map[string]string "Failed to return purchase"
// @Router /purchases/{purchaseID}/return [post]
func (h *purchaseHandler) returnPurchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("purchase_id", c.Param("purchaseID")))

	result, err := h.returnService.ReturnPurchase(c.Request.Context(), c.Param("purchaseID"))
	if err != nil {
		respondError(c, logger, err, "return purchase")
		return
	}

	logger.Info("Purchase returned", slog.String("refund", utils.FormatWithCurrencyPrecision(result.Refund, result.RefundCurrency)))
	c.JSON(http.StatusOK, dto.ToReturnResponse(result))
}

// returnPurchaseItem godoc
// @Summary Return units of one purchase line
// @Tags returns
// @Accept  json
// @Produce  json
// @Param   purchaseID path string true "Purchase ID"
// @Param   itemID path string true "Line item ID"
// @Param   body body dto.ReturnItemRequest true "Quantity"
// @Success 200 {object} dto.ReturnResponse
// @Failure 400 {object} map[string]string "Invalid quantity"
// @Failure 404 {object} map[string]string "Purchase or line not found"
// @Failure 409 {object} map[string]string "Quantity exceeds what was bought"
// @Failure 500 {object} map[string]string "Failed to return item"
// @Router /purchases/{purchaseID}/items/{itemID}/return [post]
func (h *purchaseHandler) returnPurchaseItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(
		slog.String("purchase_id", c.Param("purchaseID")), slog.String("item_id", c.Param("itemID")))
	var req dto.ReturnItemRequest
	if !bindJSON(c, logger, &req, "ReturnPurchaseItem") {
		return
	}

	result, err := h.returnService.ReturnPurchaseItem(c.Request.Context(), c.Param("purchaseID"), c.Param("itemID"), req.Quantity)
	if err != nil {
		respondError(c, logger, err, "return item")
		return
	}
	c.JSON(http.StatusOK, dto.ToReturnResponse(result))
}

// getStock godoc
// @Summary Get the stock level of an item
// @Tags stock
// @Produce  json
// @Param   itemRef path string true "Item reference"
// @Success 200 {object} dto.StockResponse
// @Failure 404 {object} map[string]string "Item not tracked"
// @Router /stock/{itemRef} [get]
func (h *purchaseHandler) getStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("item_ref", c.Param("itemRef")))

	level, err := h.purchaseService.GetStock(c.Request.Context(), c.Param("itemRef"))
	if err != nil {
		respondError(c, logger, err, "retrieve stock")
		return
	}
	c.JSON(http.StatusOK, dto.ToStockResponse(level))
}

// setStock godoc
// @Summary Set the stock level of an item
// @Description maxStock of zero leaves the item uncapped.
// @Tags stock
// @Accept  json
// @Produce  json
// @Param   itemRef path string true "Item reference"
// @Param   level body dto.SetStockRequest true "Stock level"
// @Success 200 {object} dto.StockResponse
// @Failure 400 {object} map[string]string "Invalid stock level"
// @Router /stock/{itemRef} [put]
func (h *purchaseHandler) setStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("item_ref", c.Param("itemRef")))
	var req dto.SetStockRequest
	if !bindJSON(c, logger, &req, "SetStock") {
		return
	}

	level, err := h.purchaseService.SetStock(c.Request.Context(), c.Param("itemRef"), req)
	if err != nil {
		respondError(c, logger, err, "set stock")
		return
	}
	c.JSON(http.StatusOK, dto.ToStockResponse(level))
}
