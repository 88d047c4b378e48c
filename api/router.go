package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fashion_sales/internal/sales"
)

// Dependencies are the collaborators the routes are wired to.
type Dependencies struct {
	Service  *sales.Service
	Logger   *zap.Logger
	SalesTax sales.TaxConfig
	// Gatherer backs GET /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
}

// InitRoutes registers the store endpoints on the given Gin engine.
// Paths without a route fall through to Gin's default 404.
func InitRoutes(e *gin.Engine, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	salesHandler := NewSalesHandler(deps.Service, logger, deps.SalesTax)

	e.Use(requestLogger(logger))

	e.GET("/", salesHandler.handleHome)
	e.GET("/sale", salesHandler.handleAddSale)
	e.GET("/sales", salesHandler.handleListSales)
	e.GET("/receipt/:id", salesHandler.handleReceipt)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	if deps.Gatherer != nil {
		e.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
}
