package ocr

import "errors"

// Options 單次辨識的參數，零值欄位使用 Worker 的預設值
type Options struct {
	Language string `json:"language,omitempty"`
	MaxWidth int    `json:"maxWidth,omitempty"`
}

// Status 工作佇列狀態
type Status struct {
	Started        bool  `json:"started"`
	QueueLength    int   `json:"queue_length"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
	ProcessedCount int64 `json:"processed_count"`
	FailedCount    int64 `json:"failed_count"`
	CacheSize      int   `json:"cache_size"`
}

var (
	ErrQueueFull    = errors.New("ocr queue is full")
	ErrNotStarted   = errors.New("ocr worker is not started")
	ErrClosed       = errors.New("ocr worker is closed")
	ErrInvalidImage = errors.New("invalid image")
	ErrEmptyResult  = errors.New("no text recognized")
)
