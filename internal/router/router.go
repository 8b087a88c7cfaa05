package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"deal-board/internal/handler"
	"deal-board/internal/metrics"
	"deal-board/internal/middleware"
	"deal-board/internal/service"
)

// Config holds router dependencies
type Config struct {
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer // nil serves the default registry
	Session        service.BoardSession
	BasePath       string
	AllowedOrigins []string
}

// Setup creates the gin engine for serve mode
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics, cfg.BasePath))

	metricsHandler := gin.WrapH(promhttp.Handler())
	if cfg.Gatherer != nil {
		metricsHandler = gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}

	// Root level probes for scrapers and kubelet
	r.GET("/metrics", metricsHandler)
	r.GET("/health", health)

	api := r.Group(cfg.BasePath)
	if cfg.BasePath != "" && cfg.BasePath != "/" {
		api.GET("/metrics", metricsHandler)
		api.GET("/health", health)
	}

	boardHandler := handler.NewBoardHandler(cfg.Session)

	api.GET("/board", boardHandler.GetBoard)
	api.GET("/stats", boardHandler.GetStats)
	api.GET("/revenue", boardHandler.GetRevenue)
	api.POST("/reload", boardHandler.Reload)
	api.PUT("/view-mode", boardHandler.SetViewMode)
	api.PUT("/search", boardHandler.SetSearch)
	api.POST("/menu/:id", boardHandler.ToggleMenu)
	api.POST("/select/:id", boardHandler.SelectDeal)
	api.DELETE("/select", boardHandler.ClearSelection)

	deals := api.Group("/deals")
	{
		deals.GET("", boardHandler.GetDeals)
		deals.DELETE("/:id", boardHandler.DeleteDeal)
	}

	modal := api.Group("/modal")
	{
		modal.POST("/create", boardHandler.OpenCreate)
		modal.POST("/edit/:id", boardHandler.OpenEdit)
		modal.PATCH("/draft", boardHandler.PatchDraft)
		modal.POST("/submit", boardHandler.SubmitDraft)
		modal.DELETE("", boardHandler.CloseModal)
	}

	return r
}
