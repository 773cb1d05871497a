package model

import (
	"strings"
	"time"
)

// OperatingHour 营业时间表 — 每个星期名一行
type OperatingHour struct {
	ID          uint      `gorm:"primaryKey"                           json:"id"`
	DayOfWeek   string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"day_of_week"`
	OpeningTime TimeOfDay `gorm:"not null"                             json:"opening_time"`
	ClosingTime TimeOfDay `gorm:"not null"                             json:"closing_time"`
	BaseModel
}

// TableName 指定表名
func (OperatingHour) TableName() string { return "operating_hours" }

// Covers 时刻是否落在营业时间内（闭区间）
func (h *OperatingHour) Covers(t TimeOfDay) bool {
	return h.OpeningTime <= t && t <= h.ClosingTime
}

// WeekdayName 英文星期名，与进程区域设置无关
func WeekdayName(d time.Weekday) string {
	return d.String()
}

// NormalizeWeekday 将任意大小写的英文星期名规范为 Monday … Sunday
func NormalizeWeekday(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d.String(), true
		}
	}
	return "", false
}
