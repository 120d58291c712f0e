package api

import (
	stdhttp "net/http"

	intconfig "tripquote/internal/config"
	h "tripquote/internal/http/handlers"
	"tripquote/internal/http/middleware"
	"tripquote/internal/services"
	"tripquote/internal/utils"

	"github.com/easonlin404/limit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP surface is built on.
type Deps struct {
	Quotes   services.QuoteService
	Catalog  services.CatalogLoader
	Gatherer prometheus.Gatherer
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	quotes := h.QuoteHandler{Service: deps.Quotes}
	catalog := h.CatalogHandler{Catalog: deps.Catalog}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/catalog", catalog.GetCatalog)

		q := api.Group("/quotes", middleware.AuthOptional(env.JWTSecret))
		q.POST("", quotes.CreateQuote)
		q.POST("/coupon", quotes.CreateCouponQuote)
		q.POST("/pdf", limit.Limit(pdfMaxInflight(env)), quotes.QuoteSheetPDF)
	}

	return r
}

func pdfMaxInflight(env intconfig.Env) int {
	if env.PDFMaxInflight > 0 {
		return env.PDFMaxInflight
	}
	return 16
}
