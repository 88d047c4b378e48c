package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fashion_sales/internal/sales"
)

const (
	homePage           = "<h1>Welcome to My Fashion Shop</h1>"
	receiptUnavailable = "Receipt could not be loaded."
)

// demoPurchase is the fixed basket recorded by GET /sale.
func demoPurchase() []sales.LineItem {
	return []sales.LineItem{
		{Name: "t-shirt", Qty: 15, Price: 9.99},
		{Name: "jeans", Qty: 10, Price: 12.50},
	}
}

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
	salesTax     sales.TaxConfig
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger, salesTax sales.TaxConfig) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
		salesTax:     salesTax,
	}
}

func (h *salesHandler) handleHome(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(homePage))
}

// handleAddSale handles GET /sale by recording the demo purchase.
func (h *salesHandler) handleAddSale(ctx *gin.Context) {
	sale, err := h.salesService.RecordSale(ctx.Request.Context(), demoPurchase(), h.salesTax)
	if err != nil {
		h.logger.Error("failed to add sale", zap.Error(err), zap.String("request_id", ctx.GetString(requestIDKey)))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add sale"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"receiptId": sale.ID})
}

func (h *salesHandler) handleListSales(ctx *gin.Context) {
	all, err := h.salesService.ListSales(ctx.Request.Context())
	if err != nil {
		h.logger.Error("failed to list sales", zap.Error(err), zap.String("request_id", ctx.GetString(requestIDKey)))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sales"})
		return
	}

	ctx.JSON(http.StatusOK, all)
}

// handleReceipt handles GET /receipt/:id. Unknown and malformed ids are
// both answered with 404, as is any failure to load the sale.
func (h *salesHandler) handleReceipt(ctx *gin.Context) {
	receipt, err := h.salesService.PrintReceipt(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		h.logger.Warn("receipt unavailable",
			zap.String("receipt_id", ctx.Param("id")),
			zap.String("request_id", ctx.GetString(requestIDKey)),
			zap.Error(err),
		)
		if errors.Is(err, sales.ErrNotFound) {
			ctx.String(http.StatusNotFound, err.Error())
			return
		}
		ctx.String(http.StatusNotFound, receiptUnavailable)
		return
	}

	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(receipt))
}
