package dto

// ── 顾客模块 DTO ──

// CustomerRequest 创建 / 全量更新顾客请求（PUT 覆盖全部可写字段）
type CustomerRequest struct {
	FirstName           string  `json:"first_name"           binding:"required,max=50"`
	LastName            string  `json:"last_name"            binding:"required,max=50"`
	PhoneNumber         string  `json:"phone_number"         binding:"required,max=20"`
	Email               *string `json:"email"                binding:"omitempty,email,max=100"`
	Preferences         string  `json:"preferences"          binding:"max=255"`
	DietaryRequirements string  `json:"dietary_requirements" binding:"max=255"`
	SpecialNotes        string  `json:"special_notes"        binding:"max=255"`
}

// CustomerResponse 顾客信息响应
type CustomerResponse struct {
	ID                  uint    `json:"id"`
	FirstName           string  `json:"first_name"`
	LastName            string  `json:"last_name"`
	PhoneNumber         string  `json:"phone_number"`
	Email               *string `json:"email"`
	Preferences         string  `json:"preferences"`
	DietaryRequirements string  `json:"dietary_requirements"`
	VisitCount          int     `json:"visit_count"`
	SpecialNotes        string  `json:"special_notes"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

// CustomerBrief 预订中嵌入的顾客摘要
type CustomerBrief struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}
