package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"restaurant-booking/pkg/response"
)

// MustGetID 从路径参数中解析正整数 ID。
// 解析失败时写入 400 响应并返回 false，调用方应直接 return。
func MustGetID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, name+" 必须为正整数")
		return 0, false
	}
	return uint(id), true
}

// MustGetDay 从路径参数中读取星期名，格式校验交由服务层
func MustGetDay(c *gin.Context) (string, bool) {
	day := c.Param("day")
	if day == "" {
		response.BadRequest(c, 10001, "day 不能为空")
		return "", false
	}
	return day, true
}
