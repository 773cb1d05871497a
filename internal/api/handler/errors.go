package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-booking/internal/api/middleware"
	pkgerrors "restaurant-booking/pkg/errors"
	"restaurant-booking/pkg/response"
)

// handleServiceError 按业务错误分类映射 HTTP 状态码；未分类错误一律 500
func handleServiceError(c *gin.Context, err error) {
	e, ok := pkgerrors.As(err)
	if !ok {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case pkgerrors.KindNotFound:
		status = http.StatusNotFound
	case pkgerrors.KindValidation:
		status = http.StatusBadRequest
	case pkgerrors.KindConflict:
		status = http.StatusConflict
	case pkgerrors.KindRule:
		status = http.StatusUnprocessableEntity
	}

	response.ErrorWithDetails(c, status, e.Code, e.Message, pkgerrors.DetailOf(err))
}

// handleBindError 请求体或查询参数绑定失败
func handleBindError(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
}
