package model

// Customer 顾客表 — 对应 customers
type Customer struct {
	ID                  uint    `gorm:"primaryKey"                          json:"id"`
	FirstName           string  `gorm:"type:varchar(50);not null"           json:"first_name"`
	LastName            string  `gorm:"type:varchar(50);not null"           json:"last_name"`
	PhoneNumber         string  `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone_number"`
	Email               *string `gorm:"type:varchar(100);uniqueIndex"       json:"email,omitempty"`
	Preferences         string  `gorm:"type:varchar(255)"                   json:"preferences"`
	DietaryRequirements string  `gorm:"type:varchar(255)"                   json:"dietary_requirements"`
	VisitCount          int     `gorm:"not null"                            json:"visit_count"`
	SpecialNotes        string  `gorm:"type:varchar(255)"                   json:"special_notes"`
	BaseModel
}

// TableName 指定表名
func (Customer) TableName() string { return "customers" }

// FullName 姓名
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
