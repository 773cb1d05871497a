package model

import "time"

// ReservationStatus 预订状态
type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "Confirmed"
	ReservationPending   ReservationStatus = "Pending"
	ReservationSeated    ReservationStatus = "Seated"
	ReservationCompleted ReservationStatus = "Completed"
	ReservationCancelled ReservationStatus = "Cancelled"
)

// Valid 是否为已定义的状态
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationConfirmed, ReservationPending, ReservationSeated, ReservationCompleted, ReservationCancelled:
		return true
	}
	return false
}

// Blocking 参与时间冲突检测的状态（Confirmed / Seated）
func (s ReservationStatus) Blocking() bool {
	return s == ReservationConfirmed || s == ReservationSeated
}

// Terminal 终态（Completed / Cancelled）
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

// BlockingStatuses 参与冲突检测的状态集合
var BlockingStatuses = []ReservationStatus{ReservationConfirmed, ReservationSeated}

// HoldingStatuses 仍占用餐桌的非终态集合
var HoldingStatuses = []ReservationStatus{ReservationConfirmed, ReservationPending, ReservationSeated}

// Preference 顾客座位偏好
type Preference string

const (
	PreferenceQuietArea   Preference = "Quiet Area"
	PreferenceWindowSeat  Preference = "Window Seat"
	PreferenceBooth       Preference = "Booth"
	PreferenceNearKitchen Preference = "Near Kitchen"
)

// Valid 是否为已定义的偏好
func (p Preference) Valid() bool {
	switch p {
	case PreferenceQuietArea, PreferenceWindowSeat, PreferenceBooth, PreferenceNearKitchen:
		return true
	}
	return false
}

// Reservation 预订表 — 对应 reservations
type Reservation struct {
	ID                  uint               `gorm:"primaryKey"                        json:"id"`
	CustomerID          uint               `gorm:"not null;index"                    json:"customer_id"`
	Customer            *Customer          `gorm:"foreignKey:CustomerID"             json:"customer,omitempty"`
	PartySize           int                `gorm:"not null"                          json:"party_size"`
	ReservationDate     Date               `gorm:"not null;index"                    json:"reservation_date"`
	ReservationTime     TimeOfDay          `gorm:"not null"                          json:"reservation_time"`
	DurationHours       int                `gorm:"not null"                          json:"duration_hours"`
	Status              ReservationStatus  `gorm:"type:varchar(20);not null;index"   json:"status"`
	RequestedPreference *Preference        `gorm:"type:varchar(20)"                  json:"requested_preference,omitempty"`
	Notes               string             `gorm:"type:varchar(255)"                 json:"notes"`
	IsWalkIn            bool               `gorm:"not null"                          json:"is_walk_in"`
	AssignedCapacity    int                `gorm:"not null"                          json:"assigned_capacity"`
	BookingTimestamp    time.Time          `gorm:"not null"                          json:"booking_timestamp"`
	Tables              []ReservationTable `gorm:"foreignKey:ReservationID"          json:"tables,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Reservation) TableName() string { return "reservations" }

// Start 开始时刻
func (r *Reservation) Start() TimeOfDay { return r.ReservationTime }

// End 结束时刻（半开区间右端，不回绕午夜）
func (r *Reservation) End() TimeOfDay {
	return r.ReservationTime.Add(time.Duration(r.DurationHours) * time.Hour)
}

// TableIDs 当前关联的餐桌 ID
func (r *Reservation) TableIDs() []uint {
	ids := make([]uint, 0, len(r.Tables))
	for _, rt := range r.Tables {
		ids = append(ids, rt.TableID)
	}
	return ids
}

// ReservationTable 预订-餐桌关联表，(reservation_id, table_id) 复合主键
type ReservationTable struct {
	ReservationID uint      `gorm:"primaryKey;autoIncrement:false"       json:"reservation_id"`
	TableID       uint      `gorm:"primaryKey;autoIncrement:false;index" json:"table_id"`
	Table         *Table    `gorm:"foreignKey:TableID"                   json:"table,omitempty"`
	CreatedAt     time.Time `gorm:"not null"                             json:"created_at"`
}

// TableName 指定表名
func (ReservationTable) TableName() string { return "reservation_tables" }
