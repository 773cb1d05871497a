package event

import (
	"context"
	"time"
)

// 预订生命周期事件类型（同时作为 AMQP routing key）
const (
	TypeReservationCreated       = "reservation.created"
	TypeReservationUpdated       = "reservation.updated"
	TypeReservationStatusChanged = "reservation.status_changed"
	TypeReservationTablesMerged  = "reservation.tables_merged"
	TypeReservationTablesFreed   = "reservation.tables_demerged"
	TypeReservationDeleted       = "reservation.deleted"
)

// Event 预订事件载荷
type Event struct {
	Type           string    `json:"type"`
	ReservationID  uint      `json:"reservation_id"`
	CustomerID     uint      `json:"customer_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Date           string    `json:"reservation_date"`
	Time           string    `json:"reservation_time"`
	TableIDs       []uint    `json:"table_ids"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher 事件发布接口；实现方须并发安全
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NopPublisher 未启用事件时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
