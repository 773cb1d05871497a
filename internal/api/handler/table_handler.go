package handler

import (
	"github.com/gin-gonic/gin"

	"restaurant-booking/internal/dto"
	"restaurant-booking/internal/service"
	"restaurant-booking/pkg/response"
)

// TableHandler 餐桌模块 HTTP 处理器
type TableHandler struct {
	tableSvc service.TableService
}

// NewTableHandler 创建 TableHandler
func NewTableHandler(tableSvc service.TableService) *TableHandler {
	return &TableHandler{tableSvc: tableSvc}
}

// ListTables 获取餐桌列表，可按状态筛选
// GET /api/v1/tables?status=Available
func (h *TableHandler) ListTables(c *gin.Context) {
	var req dto.TableListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleBindError(c, err)
		return
	}

	tables, err := h.tableSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKList(c, tables, len(tables))
}

// GetTable 获取餐桌详情
// GET /api/v1/tables/:id
func (h *TableHandler) GetTable(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	table, err := h.tableSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, table)
}

// CreateTable 创建餐桌
// POST /api/v1/tables
func (h *TableHandler) CreateTable(c *gin.Context) {
	var req dto.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	table, err := h.tableSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, table)
}

// UpdateTable 部分更新餐桌
// PATCH /api/v1/tables/:id
func (h *TableHandler) UpdateTable(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	table, err := h.tableSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, table)
}

// DeleteTable 删除餐桌
// DELETE /api/v1/tables/:id
func (h *TableHandler) DeleteTable(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	if err := h.tableSvc.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	response.Deleted(c)
}
