package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"recipe-ingest/internal/core/ocr"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status       string                 `json:"status"`
	Timestamp    time.Time              `json:"timestamp"`
	Version      string                 `json:"version"`
	UnitsVersion int                    `json:"units_version"`
	Runtime      map[string]interface{} `json:"runtime"`
	OCR          *ocr.Status            `json:"ocr,omitempty"`
}

// OCRStatus 提供 OCR 佇列狀態
type OCRStatus interface {
	Status() ocr.Status
}

// Handler 健康檢查
type Handler struct {
	version      string
	unitsVersion int
	ocr          OCRStatus
}

// NewHandler ocr 為 nil 代表未啟用圖片辨識
func NewHandler(version string, unitsVersion int, ocrStatus OCRStatus) *Handler {
	return &Handler{version: version, unitsVersion: unitsVersion, ocr: ocrStatus}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:       "ok",
		Timestamp:    time.Now(),
		Version:      h.version,
		UnitsVersion: h.unitsVersion,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.ocr != nil {
		status := h.ocr.Status()
		response.OCR = &status
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck OCR 已啟用但尚未啟動時回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.ocr != nil && !h.ocr.Status().Started {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "ocr worker not started",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
