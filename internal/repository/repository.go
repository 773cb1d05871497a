package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Customer      CustomerRepository
	Table         TableRepository
	OperatingHour OperatingHourRepository
	Reservation   ReservationRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Customer:      NewCustomerRepo(db),
		Table:         NewTableRepo(db),
		OperatingHour: NewOperatingHourRepo(db),
		Reservation:   NewReservationRepo(db),
		db:            db,
	}
}

// Transaction 在单个数据库事务内执行 fn，fn 返回错误或 panic 时整体回滚。
// fn 内只能使用传入的 tx 聚合，不得再使用外层 Repository。
// 未绑定数据库（单元测试注入 mock）时直接以自身执行。
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// BeginTx 手动开启事务（调用方负责 Commit / Rollback）
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到指定事务的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Ping 数据库健康检查
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
