package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant-booking/internal/model"
)

// ReservationFilter 预订列表筛选条件（零值表示不筛选）
type ReservationFilter struct {
	Date       *model.Date
	Status     *model.ReservationStatus
	CustomerID uint
}

// ReservationRepository 预订及预订-餐桌关联数据访问接口
type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	// GetByID 预加载顾客与关联餐桌
	GetByID(ctx context.Context, id uint) (*model.Reservation, error)
	// GetByIDForUpdate 事务内加行锁读取，串行化同一预订上的状态变更
	GetByIDForUpdate(ctx context.Context, id uint) (*model.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error)
	Update(ctx context.Context, reservation *model.Reservation) error
	Delete(ctx context.Context, id uint) error

	// ListBlockingByCustomer 顾客在指定日期的 Confirmed/Seated 预订，excludeID 为 0 时不排除
	ListBlockingByCustomer(ctx context.Context, customerID uint, date model.Date, excludeID uint) ([]model.Reservation, error)
	// ListBlockingByTable 占用指定餐桌、指定日期的 Confirmed/Seated 预订
	ListBlockingByTable(ctx context.Context, tableID uint, date model.Date, excludeID uint) ([]model.Reservation, error)
	// CountHoldingByTable 仍持有该餐桌的非终态预订数
	CountHoldingByTable(ctx context.Context, tableID uint, excludeID uint) (int64, error)
	// CountSeatedByTable 已入座（Seated）并持有该餐桌的预订数
	CountSeatedByTable(ctx context.Context, tableID uint, excludeID uint) (int64, error)
	CountByCustomer(ctx context.Context, customerID uint) (int64, error)

	AddTables(ctx context.Context, reservationID uint, tableIDs []uint) error
	RemoveTables(ctx context.Context, reservationID uint, tableIDs []uint) error
	RemoveAllTables(ctx context.Context, reservationID uint) error
}

type reservationRepo struct {
	db *gorm.DB
}

// NewReservationRepo 创建 ReservationRepository 实例
func NewReservationRepo(db *gorm.DB) ReservationRepository {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) Create(ctx context.Context, reservation *model.Reservation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(reservation).Error
}

func (r *reservationRepo) GetByID(ctx context.Context, id uint) (*model.Reservation, error) {
	var reservation model.Reservation
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Tables", func(db *gorm.DB) *gorm.DB {
			return db.Order("table_id ASC")
		}).
		Preload("Tables.Table").
		First(&reservation, id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.Reservation, error) {
	var reservation model.Reservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Tables", func(db *gorm.DB) *gorm.DB {
			return db.Order("table_id ASC")
		}).
		First(&reservation, id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepo) List(ctx context.Context, filter ReservationFilter) ([]model.Reservation, error) {
	var reservations []model.Reservation
	db := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Tables", func(db *gorm.DB) *gorm.DB {
			return db.Order("table_id ASC")
		}).
		Preload("Tables.Table")

	if filter.Date != nil {
		db = db.Where("reservation_date = ?", *filter.Date)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != 0 {
		db = db.Where("customer_id = ?", filter.CustomerID)
	}

	err := db.Order("reservation_date ASC, reservation_time ASC, id ASC").Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepo) Update(ctx context.Context, reservation *model.Reservation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(reservation).Error
}

// Delete 删除预订及其餐桌关联
func (r *reservationRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reservation_id = ?", id).Delete(&model.ReservationTable{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Reservation{}, id).Error
	})
}

// ────────────────────── 冲突查询 ──────────────────────

func (r *reservationRepo) ListBlockingByCustomer(ctx context.Context, customerID uint, date model.Date, excludeID uint) ([]model.Reservation, error) {
	var reservations []model.Reservation
	db := r.db.WithContext(ctx).
		Where("customer_id = ? AND reservation_date = ? AND status IN ?", customerID, date, model.BlockingStatuses)
	if excludeID != 0 {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Order("reservation_time ASC").Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepo) ListBlockingByTable(ctx context.Context, tableID uint, date model.Date, excludeID uint) ([]model.Reservation, error) {
	var reservations []model.Reservation
	db := r.db.WithContext(ctx).
		Joins("JOIN reservation_tables rt ON rt.reservation_id = reservations.id").
		Where("rt.table_id = ? AND reservations.reservation_date = ? AND reservations.status IN ?",
			tableID, date, model.BlockingStatuses)
	if excludeID != 0 {
		db = db.Where("reservations.id <> ?", excludeID)
	}
	err := db.Order("reservations.reservation_time ASC").Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepo) CountHoldingByTable(ctx context.Context, tableID uint, excludeID uint) (int64, error) {
	return r.countByTable(ctx, tableID, model.HoldingStatuses, excludeID)
}

func (r *reservationRepo) CountSeatedByTable(ctx context.Context, tableID uint, excludeID uint) (int64, error) {
	return r.countByTable(ctx, tableID, []model.ReservationStatus{model.ReservationSeated}, excludeID)
}

func (r *reservationRepo) countByTable(ctx context.Context, tableID uint, statuses []model.ReservationStatus, excludeID uint) (int64, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Joins("JOIN reservation_tables rt ON rt.reservation_id = reservations.id").
		Where("rt.table_id = ? AND reservations.status IN ?", tableID, statuses)
	if excludeID != 0 {
		db = db.Where("reservations.id <> ?", excludeID)
	}
	err := db.Count(&count).Error
	return count, err
}

func (r *reservationRepo) CountByCustomer(ctx context.Context, customerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}

// ────────────────────── 餐桌关联 ──────────────────────

func (r *reservationRepo) AddTables(ctx context.Context, reservationID uint, tableIDs []uint) error {
	if len(tableIDs) == 0 {
		return nil
	}
	links := make([]model.ReservationTable, 0, len(tableIDs))
	for _, id := range tableIDs {
		links = append(links, model.ReservationTable{ReservationID: reservationID, TableID: id})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *reservationRepo) RemoveTables(ctx context.Context, reservationID uint, tableIDs []uint) error {
	if len(tableIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("reservation_id = ? AND table_id IN ?", reservationID, tableIDs).
		Delete(&model.ReservationTable{}).Error
}

func (r *reservationRepo) RemoveAllTables(ctx context.Context, reservationID uint) error {
	return r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Delete(&model.ReservationTable{}).Error
}
