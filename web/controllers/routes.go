package controllers

import (
	"context"
	"time"

	"meal-coupon/web/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	CORSOrigins []string
	Limiter     *middleware.RateLimiter
	// UploadsDir is served at UploadsPath when set.
	UploadsDir  string
	UploadsPath string
	Ping        func(ctx context.Context) error
	Log         *zap.Logger
}

func NewRouter(h *Handlers, cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log), middleware.Metrics())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	limit := func(c *gin.Context) { c.Next() }
	if cfg.Limiter != nil {
		limit = cfg.Limiter.Middleware()
	}

	r.GET("/healthz", Health(cfg.Ping))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.UploadsDir != "" && cfg.UploadsPath != "" {
		r.Static(cfg.UploadsPath, cfg.UploadsDir)
	}

	api := r.Group("/api")
	api.POST("/registrations", limit, h.Register)
	api.POST("/uploads/payment-proof", limit, h.UploadPaymentProof)
	api.GET("/registrations", h.ListRegistrations)
	api.GET("/registrations/:id/qrcode.png", h.QRCode)
	api.GET("/stats", h.Stats)

	api.GET("/scan-verify", h.Lookup)
	api.POST("/scan-verify", h.Redeem)
	api.POST("/scan", h.Scan)

	admin := api.Group("/admin")
	admin.PATCH("/registrations/:id/payment-status", h.ReviewPayment)
	admin.GET("/export.xlsx", h.Export)

	return r
}
