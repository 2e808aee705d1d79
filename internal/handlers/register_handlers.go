package handlers

import (
	"net/http"

	"github.com/SscSPs/pos_reconciliation/cmd/docs"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/middleware"
	"github.com/SscSPs/pos_reconciliation/internal/platform/config"
	"github.com/SscSPs/pos_reconciliation/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// lim may be nil, in which case mutating routes are not rate limited. m may be nil, in
// which case /metrics is not exposed.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	m *metrics.Metrics,
	lim *limiter.Limiter,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	setupAPIV1Routes(r, services, lim)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(r *gin.Engine, service *portssvc.ServiceContainer, lim *limiter.Limiter) {
	v1 := r.Group("/api/v1")

	write := func(c *gin.Context) { c.Next() }
	if lim != nil {
		write = middleware.RateLimit(lim)
	}

	registerExchangeRateRoutes(v1, write, service.ExchangeRate)
	registerSaleRoutes(v1, write, service.Sale, service.Return)
	registerLedgerRoutes(v1, write, service.Ledger, service.Payment)
	registerPurchaseRoutes(v1, write, service.Purchase, service.Return)
	registerReportingRoutes(v1, service.Reporting)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
