package common

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// WriteErrorResponse 寫入錯誤響應並中止請求；debug 模式才附上原始錯誤
func WriteErrorResponse(c *gin.Context, err error, debug bool) {
	var ce *CustomError
	if !errors.As(err, &ce) {
		ce = NewError(ErrCodeInternalError, ErrInternalError.Message, ErrInternalError.Status, err)
	}

	resp := ErrorResponse{Code: ce.Code, Message: ce.Message}
	if debug && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	c.AbortWithStatusJSON(ce.Status, resp)
}
