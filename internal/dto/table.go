package dto

// ── 餐桌模块 DTO ──

// CreateTableRequest 创建餐桌请求
type CreateTableRequest struct {
	TableNumber  int    `json:"table_number"  binding:"required,gt=0"`
	Capacity     int    `json:"capacity"      binding:"required,gt=0"`
	Location     string `json:"location"      binding:"required,table_location"`
	IsCombinable bool   `json:"is_combinable"`
	Status       string `json:"status"        binding:"omitempty,table_status"`
}

// UpdateTableRequest 部分更新餐桌请求（table_number 不可修改）
type UpdateTableRequest struct {
	Capacity     *int    `json:"capacity"      binding:"omitempty,gt=0"`
	Location     *string `json:"location"      binding:"omitempty,table_location"`
	IsCombinable *bool   `json:"is_combinable"`
	Status       *string `json:"status"        binding:"omitempty,table_status"`
}

// TableListRequest 餐桌列表查询参数
type TableListRequest struct {
	Status string `form:"status" binding:"omitempty,table_status"`
}

// TableResponse 餐桌信息响应
type TableResponse struct {
	ID           uint   `json:"id"`
	TableNumber  int    `json:"table_number"`
	Capacity     int    `json:"capacity"`
	Location     string `json:"location"`
	IsCombinable bool   `json:"is_combinable"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}
