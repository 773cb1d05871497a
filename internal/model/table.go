package model

// TableLocation 餐桌所在区域
type TableLocation string

const (
	LocationWindow  TableLocation = "Window"
	LocationCenter  TableLocation = "Center"
	LocationOutdoor TableLocation = "Outdoor"
)

// Valid 是否为已定义的区域
func (l TableLocation) Valid() bool {
	switch l {
	case LocationWindow, LocationCenter, LocationOutdoor:
		return true
	}
	return false
}

// TableStatus 餐桌状态
type TableStatus string

const (
	TableAvailable    TableStatus = "Available"
	TableOccupied     TableStatus = "Occupied"
	TableMaintenance  TableStatus = "Maintenance"
	TableSpecialEvent TableStatus = "Special Event"
	TableReserved     TableStatus = "Reserved"
)

// Valid 是否为已定义的状态
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableMaintenance, TableSpecialEvent, TableReserved:
		return true
	}
	return false
}

// IsManualOverride 人工设置的停用状态：释放餐桌时不得覆盖，预订时一律拒绝
func (s TableStatus) IsManualOverride() bool {
	return s == TableMaintenance || s == TableSpecialEvent
}

// Table 餐桌表 — 对应 restaurant_tables
type Table struct {
	ID           uint          `gorm:"primaryKey"                                   json:"id"`
	TableNumber  int           `gorm:"not null;uniqueIndex"                         json:"table_number"`
	Capacity     int           `gorm:"not null"                                     json:"capacity"`
	Location     TableLocation `gorm:"type:varchar(20);not null"                    json:"location"`
	IsCombinable bool          `gorm:"not null"                                     json:"is_combinable"`
	Status       TableStatus   `gorm:"type:varchar(20);not null;default:'Available'" json:"status"`
	BaseModel
}

// TableName 指定表名（tables 在部分方言中为保留字）
func (Table) TableName() string { return "restaurant_tables" }
