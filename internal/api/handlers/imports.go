package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-ingest/internal/core/importer"
	"recipe-ingest/internal/core/ocr"
	"recipe-ingest/internal/pkg/common"
)

// ImportTextRequest 貼上的食譜文字
type ImportTextRequest struct {
	Text string `json:"text"`
}

// ImportURLRequest 食譜網址
type ImportURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// ImportHandler 食譜匯入
type ImportHandler struct {
	service       *importer.Service
	maxUploadSize int64
	debug         bool
}

// NewImportHandler 創建匯入處理程序
func NewImportHandler(service *importer.Service, maxUploadSize int64, debug bool) *ImportHandler {
	return &ImportHandler{service: service, maxUploadSize: maxUploadSize, debug: debug}
}

// HandleText POST /import/text
func (h *ImportHandler) HandleText(c *gin.Context) {
	var req ImportTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, h.debug)
		return
	}

	result, err := h.service.ImportText(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleURL POST /import/url
func (h *ImportHandler) HandleURL(c *gin.Context) {
	var req ImportURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, h.debug)
		return
	}

	result, err := h.service.ImportURL(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleFile POST /import/file，multipart 欄位 file 與選填的 language、maxWidth
func (h *ImportHandler) HandleFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err, h.debug)
		return
	}
	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		common.WriteErrorResponse(c, wrap(common.ErrFileTooLarge,
			fmt.Errorf("%d bytes exceeds %d", header.Size, h.maxUploadSize)), h.debug)
		return
	}

	f, err := header.Open()
	if err != nil {
		badRequest(c, err, h.debug)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		badRequest(c, err, h.debug)
		return
	}
	if len(data) == 0 {
		badRequest(c, errors.New("empty file"), h.debug)
		return
	}

	var opts ocr.Options
	opts.Language = c.PostForm("language")
	if w := c.PostForm("maxWidth"); w != "" {
		if _, err := fmt.Sscanf(w, "%d", &opts.MaxWidth); err != nil || opts.MaxWidth < 0 {
			badRequest(c, fmt.Errorf("invalid maxWidth %q", w), h.debug)
			return
		}
	}

	result, err := h.service.ImportFile(c.Request.Context(), header.Filename, data, opts)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, result)
}
