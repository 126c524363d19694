package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-ingest/internal/core/importer"
	"recipe-ingest/internal/core/ocr"
	"recipe-ingest/internal/core/source"
	"recipe-ingest/internal/pkg/common"
)

// toCustomError 將服務層錯誤對應到 API 錯誤碼與狀態碼
func toCustomError(err error) *common.CustomError {
	var ce *common.CustomError
	if errors.As(err, &ce) {
		return ce
	}

	switch source.KindOf(err) {
	case source.KindInvalidURL:
		return common.NewError(common.ErrCodeInvalidURL, "無效的網址", http.StatusBadRequest, err)
	case source.KindBlockedHost:
		return common.NewError(common.ErrCodeBlockedHost, "不允許抓取此主機", http.StatusForbidden, err)
	case source.KindTimeout:
		return common.NewError(common.ErrCodeGatewayTimeout, "抓取網頁超時", http.StatusGatewayTimeout, err)
	case source.KindUpstreamStatus, source.KindTransport:
		return common.NewError(common.ErrCodeBadGateway, "無法取得網頁", http.StatusBadGateway, err)
	case source.KindContentType:
		return common.NewError(common.ErrCodeUnsupportedMedia, "網址不是 HTML 網頁", http.StatusUnsupportedMediaType, err)
	}

	switch {
	case errors.Is(err, importer.ErrOCRUnavailable):
		return wrap(common.ErrOCRUnavailable, err)
	case errors.Is(err, ocr.ErrQueueFull), errors.Is(err, ocr.ErrNotStarted), errors.Is(err, ocr.ErrClosed):
		return wrap(common.ErrOCRBusy, err)
	case errors.Is(err, source.ErrUnsupportedDocument), errors.Is(err, ocr.ErrInvalidImage):
		return wrap(common.ErrUnsupportedMedia, err)
	case errors.Is(err, context.DeadlineExceeded):
		return wrap(common.ErrGatewayTimeout, err)
	}
	return wrap(common.ErrInternalError, err)
}

func wrap(base *common.CustomError, err error) *common.CustomError {
	return common.NewError(base.Code, base.Message, base.Status, err)
}

// respondError 記錄並寫入錯誤
func respondError(c *gin.Context, err error, debug bool) {
	ce := toCustomError(err)
	fields := []zap.Field{
		zap.String("request_id", requestid.Get(c)),
		zap.String("code", ce.Code),
		zap.Error(err),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}
	common.WriteErrorResponse(c, ce, debug)
}

// badRequest 請求格式錯誤
func badRequest(c *gin.Context, err error, debug bool) {
	common.WriteErrorResponse(c, wrap(common.ErrInvalidRequest, err), debug)
}
