package service

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"restaurant-booking/internal/model"
	"restaurant-booking/internal/repository"
)

// ── Mock CustomerRepository ──

type mockCustomerRepo struct {
	customers map[uint]*model.Customer
	nextID    uint
}

func newMockCustomerRepo() *mockCustomerRepo {
	return &mockCustomerRepo{customers: make(map[uint]*model.Customer), nextID: 1}
}

func (m *mockCustomerRepo) Create(_ context.Context, customer *model.Customer) error {
	if customer.ID == 0 {
		customer.ID = m.nextID
		m.nextID++
	}
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepo) GetByID(_ context.Context, id uint) (*model.Customer, error) {
	if c, ok := m.customers[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCustomerRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.Customer, error) {
	return m.GetByID(ctx, id)
}

func (m *mockCustomerRepo) GetByPhone(_ context.Context, phone string) (*model.Customer, error) {
	for _, c := range m.customers {
		if c.PhoneNumber == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCustomerRepo) GetByEmail(_ context.Context, email string) (*model.Customer, error) {
	for _, c := range m.customers {
		if c.Email != nil && *c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCustomerRepo) List(_ context.Context) ([]model.Customer, error) {
	var result []model.Customer
	for _, c := range m.customers {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockCustomerRepo) Update(_ context.Context, customer *model.Customer) error {
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepo) Delete(_ context.Context, id uint) error {
	delete(m.customers, id)
	return nil
}

func (m *mockCustomerRepo) IncrementVisitCount(_ context.Context, id uint) error {
	c, ok := m.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.VisitCount++
	return nil
}

// ── Mock TableRepository ──

type mockTableRepo struct {
	tables map[uint]*model.Table
	nextID uint
	locked []uint // GetByIDsForUpdate 收到的 ID
}

func newMockTableRepo() *mockTableRepo {
	return &mockTableRepo{tables: make(map[uint]*model.Table), nextID: 1}
}

func (m *mockTableRepo) Create(_ context.Context, table *model.Table) error {
	if table.ID == 0 {
		table.ID = m.nextID
		m.nextID++
	}
	m.tables[table.ID] = table
	return nil
}

func (m *mockTableRepo) GetByID(_ context.Context, id uint) (*model.Table, error) {
	if t, ok := m.tables[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTableRepo) GetByNumber(_ context.Context, number int) (*model.Table, error) {
	for _, t := range m.tables {
		if t.TableNumber == number {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTableRepo) GetByIDsForUpdate(_ context.Context, ids []uint) ([]model.Table, error) {
	m.locked = append(m.locked, ids...)
	var result []model.Table
	for _, id := range ids {
		if t, ok := m.tables[id]; ok {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockTableRepo) List(_ context.Context, status *model.TableStatus) ([]model.Table, error) {
	var result []model.Table
	for _, t := range m.tables {
		if status != nil && t.Status != *status {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TableNumber < result[j].TableNumber })
	return result, nil
}

func (m *mockTableRepo) Update(_ context.Context, table *model.Table) error {
	m.tables[table.ID] = table
	return nil
}

func (m *mockTableRepo) UpdateStatus(_ context.Context, ids []uint, status model.TableStatus) error {
	for _, id := range ids {
		if t, ok := m.tables[id]; ok {
			t.Status = status
		}
	}
	return nil
}

func (m *mockTableRepo) Delete(_ context.Context, id uint) error {
	delete(m.tables, id)
	return nil
}

// ── Mock OperatingHourRepository ──

type mockOperatingHourRepo struct {
	hours  map[string]*model.OperatingHour
	nextID uint
}

func newMockOperatingHourRepo() *mockOperatingHourRepo {
	return &mockOperatingHourRepo{hours: make(map[string]*model.OperatingHour), nextID: 1}
}

func (m *mockOperatingHourRepo) Create(_ context.Context, hour *model.OperatingHour) error {
	if hour.ID == 0 {
		hour.ID = m.nextID
		m.nextID++
	}
	m.hours[hour.DayOfWeek] = hour
	return nil
}

func (m *mockOperatingHourRepo) GetByDay(_ context.Context, day string) (*model.OperatingHour, error) {
	if h, ok := m.hours[day]; ok {
		cp := *h
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOperatingHourRepo) List(_ context.Context) ([]model.OperatingHour, error) {
	var result []model.OperatingHour
	for _, h := range m.hours {
		result = append(result, *h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockOperatingHourRepo) Update(_ context.Context, hour *model.OperatingHour) error {
	m.hours[hour.DayOfWeek] = hour
	return nil
}

func (m *mockOperatingHourRepo) DeleteByDay(_ context.Context, day string) error {
	if _, ok := m.hours[day]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.hours, day)
	return nil
}

// ── Mock ReservationRepository ──
// 只服务 CRUD 服务的引用计数检查，调度规则由 sqlite 测试覆盖

type mockReservationRepo struct {
	byCustomer map[uint]int64
	holding    map[uint]int64
	seated     map[uint]int64
}

func newMockReservationRepo() *mockReservationRepo {
	return &mockReservationRepo{
		byCustomer: make(map[uint]int64),
		holding:    make(map[uint]int64),
		seated:     make(map[uint]int64),
	}
}

func (m *mockReservationRepo) Create(context.Context, *model.Reservation) error { return nil }
func (m *mockReservationRepo) GetByID(context.Context, uint) (*model.Reservation, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockReservationRepo) GetByIDForUpdate(context.Context, uint) (*model.Reservation, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockReservationRepo) List(context.Context, repository.ReservationFilter) ([]model.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) Update(context.Context, *model.Reservation) error { return nil }
func (m *mockReservationRepo) Delete(context.Context, uint) error               { return nil }
func (m *mockReservationRepo) ListBlockingByCustomer(context.Context, uint, model.Date, uint) ([]model.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) ListBlockingByTable(context.Context, uint, model.Date, uint) ([]model.Reservation, error) {
	return nil, nil
}

func (m *mockReservationRepo) CountHoldingByTable(_ context.Context, tableID uint, _ uint) (int64, error) {
	return m.holding[tableID], nil
}

func (m *mockReservationRepo) CountSeatedByTable(_ context.Context, tableID uint, _ uint) (int64, error) {
	return m.seated[tableID], nil
}

func (m *mockReservationRepo) CountByCustomer(_ context.Context, customerID uint) (int64, error) {
	return m.byCustomer[customerID], nil
}

func (m *mockReservationRepo) AddTables(context.Context, uint, []uint) error    { return nil }
func (m *mockReservationRepo) RemoveTables(context.Context, uint, []uint) error { return nil }
func (m *mockReservationRepo) RemoveAllTables(context.Context, uint) error      { return nil }

// newMockRepository 组装基于 mock 的 Repository 聚合（未绑定数据库）
func newMockRepository() (*repository.Repository, *mockCustomerRepo, *mockTableRepo, *mockOperatingHourRepo, *mockReservationRepo) {
	customers := newMockCustomerRepo()
	tables := newMockTableRepo()
	hours := newMockOperatingHourRepo()
	reservations := newMockReservationRepo()
	repo := &repository.Repository{
		Customer:      customers,
		Table:         tables,
		OperatingHour: hours,
		Reservation:   reservations,
	}
	return repo, customers, tables, hours, reservations
}
