package ocr

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"recipe-ingest/internal/infrastructure/config"
	"recipe-ingest/internal/pkg/common"
)

// job 佇列中的辨識請求
type job struct {
	ctx    context.Context
	image  []byte
	opts   Options
	result chan result
}

// result 處理結果
type result struct {
	text string
	err  error
}

// Worker 有明確生命週期的 OCR 工作池：NewWorker → Start → Recognize... → Close
type Worker struct {
	transcriber Transcriber
	cache       *ResultCache
	defaults    Options
	workers     int
	queueSize   int

	jobs      chan *job
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
	started   atomic.Bool
	processed atomic.Int64
	failed    atomic.Int64
}

// NewWorker 創建工作池，cache 可為 nil
func NewWorker(cfg config.OCRConfig, transcriber Transcriber, cache *ResultCache) *Worker {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = workers
	}

	return &Worker{
		transcriber: transcriber,
		cache:       cache,
		defaults:    Options{Language: cfg.Language, MaxWidth: cfg.MaxWidth},
		workers:     workers,
		queueSize:   queueSize,
		jobs:        make(chan *job, queueSize),
		done:        make(chan struct{}),
	}
}

// Start 啟動背景協程，重複呼叫無作用
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		for i := 0; i < w.workers; i++ {
			w.wg.Add(1)
			go w.run(i)
		}
		w.started.Store(true)
		common.LogInfo("OCR worker started",
			zap.Int("workers", w.workers),
			zap.Int("max_queue_size", w.queueSize),
		)
	})
}

// Recognize 排入佇列並等待結果；佇列滿時立即回傳 ErrQueueFull
func (w *Worker) Recognize(ctx context.Context, image []byte, opts Options) (string, error) {
	select {
	case <-w.done:
		return "", ErrClosed
	default:
	}
	if !w.started.Load() {
		return "", ErrNotStarted
	}

	j := &job{ctx: ctx, image: image, opts: w.merge(opts), result: make(chan result, 1)}
	select {
	case w.jobs <- j:
	case <-w.done:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		return "", ErrQueueFull
	}

	select {
	case r := <-j.result:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-w.done:
		return "", ErrClosed
	}
}

// Status 工作佇列狀態
func (w *Worker) Status() Status {
	return Status{
		Started:        w.started.Load(),
		QueueLength:    len(w.jobs),
		MaxQueueSize:   w.queueSize,
		Workers:        w.workers,
		ProcessedCount: w.processed.Load(),
		FailedCount:    w.failed.Load(),
		CacheSize:      w.cache.Len(),
	}
}

// Close 停止接受新工作並等待處理中的工作結束
func (w *Worker) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
		w.cache.Close()
		common.LogInfo("OCR worker closed",
			zap.Int64("processed_count", w.processed.Load()),
			zap.Int64("failed_count", w.failed.Load()),
		)
	})
	return nil
}

func (w *Worker) merge(opts Options) Options {
	if opts.Language == "" {
		opts.Language = w.defaults.Language
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = w.defaults.MaxWidth
	}
	return opts
}

func (w *Worker) run(id int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case j := <-w.jobs:
			text, err := w.process(j)
			if err != nil {
				w.failed.Add(1)
			} else {
				w.processed.Add(1)
			}
			j.result <- result{text: text, err: err}
			common.LogDebug("OCR job finished", zap.Int("worker", id), zap.Bool("ok", err == nil))
		}
	}
}

func (w *Worker) process(j *job) (string, error) {
	// 呼叫端已放棄就不再處理
	if err := j.ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	img, err := PrepareImage(j.image, j.opts.MaxWidth)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s:%s:%d", img.Hash, j.opts.Language, j.opts.MaxWidth)
	if text, ok := w.cache.Get(key); ok {
		common.LogCacheHit("ocr")
		return text, nil
	}

	text, err := w.transcriber.Transcribe(j.ctx, img.DataURI, j.opts)
	if err != nil {
		common.LogError("OCR transcription failed", zap.Error(err))
		return "", err
	}
	w.cache.Set(key, text)

	common.LogInfo("OCR transcription completed",
		zap.String("format", img.Format),
		zap.Int("width", img.Width),
		zap.Int("chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}
