package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"restaurant-booking/pkg/response"
)

// BodyLimit 请求体大小限制；maxBytes <= 0 时不限制。
// Content-Length 已超限的请求直接拒绝，其余在读取时由 MaxBytesReader 截断。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}

// IsBodyTooLarge 绑定错误是否由请求体超限引起
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
