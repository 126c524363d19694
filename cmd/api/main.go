package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"recipe-ingest/internal/api"
	"recipe-ingest/internal/core/importer"
	"recipe-ingest/internal/core/ingredient"
	"recipe-ingest/internal/core/ocr"
	"recipe-ingest/internal/core/source"
	"recipe-ingest/internal/infrastructure/config"
	"recipe-ingest/internal/pkg/common"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.Bool("ocr_enabled", cfg.OCR.Enabled),
		zap.String("ocr_api_key", config.MaskAPIKey(cfg.OCR.APIKey)),
		zap.String("ocr_model", cfg.OCR.Model),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("units_tables", cfg.Units.TablesPath),
	)

	// 單位資料表
	units := ingredient.Default()
	if cfg.Units.TablesPath != "" {
		units, err = ingredient.LoadRegistryFile(cfg.Units.TablesPath)
		if err != nil {
			common.LogFatal("Failed to load unit tables", zap.Error(err))
		}
	}

	// 網頁快取
	startCtx, cancelStart := context.WithTimeout(context.Background(), 5*time.Second)
	pageCache, err := source.NewPageCache(startCtx, cfg.Redis)
	cancelStart()
	if err != nil {
		common.LogFatal("Failed to connect page cache", zap.Error(err))
	}
	defer pageCache.Close()

	fetcher := source.NewFetcher(cfg.Fetch, pageCache)

	// 圖片辨識
	var worker *ocr.Worker
	var recognizer importer.Recognizer
	if cfg.OCR.Enabled {
		worker = ocr.NewWorker(cfg.OCR, ocr.NewOpenRouterTranscriber(cfg.OCR), ocr.NewResultCache(cfg.Cache))
		worker.Start()
		defer worker.Close()
		recognizer = worker
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		Importer: importer.NewService(fetcher, recognizer, units),
		Units:    units,
		OCR:      worker,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
