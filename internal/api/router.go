package api

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-ingest/internal/api/handlers"
	"recipe-ingest/internal/api/handlers/health"
	"recipe-ingest/internal/api/middleware"
	"recipe-ingest/internal/core/importer"
	"recipe-ingest/internal/core/ingredient"
	"recipe-ingest/internal/core/ocr"
	"recipe-ingest/internal/infrastructure/config"
	"recipe-ingest/internal/pkg/common"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// multipart 表單欄位的額外空間
	formOverhead = 1 << 20
)

// Dependencies 路由需要的服務，由 main 建立並管理生命週期
type Dependencies struct {
	Importer *importer.Service
	Units    *ingredient.Registry
	// OCR 為 nil 代表未啟用圖片辨識
	OCR *ocr.Worker
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Importer == nil {
		return nil, errors.New("setup router: importer is required")
	}
	if deps.Units == nil {
		deps.Units = ingredient.Default()
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("ocr_enabled", deps.OCR != nil),
		zap.Int("units_version", deps.Units.Version()),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		common.WriteErrorResponse(c, common.ErrNotFound, false)
	})
	router.NoMethod(func(c *gin.Context) {
		common.WriteErrorResponse(c, common.ErrMethodNotAllowed, false)
	})

	// 註冊基礎中間件
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// 健康檢查路由
	var ocrStatus health.OCRStatus
	if deps.OCR != nil {
		ocrStatus = deps.OCR
	}
	healthHandler := health.NewHandler(cfg.App.Version, deps.Units.Version(), ocrStatus)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.BodySizeLimit(cfg.Upload.MaxSizeBytes + formOverhead))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.Deduplication(cfg.DedupWindow))
	{
		importHandler := handlers.NewImportHandler(deps.Importer, cfg.Upload.MaxSizeBytes, cfg.App.Debug)
		importGroup := api.Group("/import")
		{
			importGroup.POST("/text", importHandler.HandleText)
			importGroup.POST("/url", importHandler.HandleURL)
			importGroup.POST("/file", importHandler.HandleFile)
		}

		ingredientHandler := handlers.NewIngredientHandler(deps.Units, cfg.App.Debug)
		ingredientGroup := api.Group("/ingredients")
		{
			ingredientGroup.POST("/parse", ingredientHandler.HandleParse)
			ingredientGroup.POST("/normalize", ingredientHandler.HandleNormalize)
		}

		shoppingHandler := handlers.NewShoppingHandler(deps.Units, cfg.App.Debug)
		api.POST("/shopping-list", shoppingHandler.HandleShoppingList)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_upload_size", cfg.Upload.MaxSizeBytes),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
	)

	return router, nil
}
