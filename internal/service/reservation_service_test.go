package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurant-booking/config"
	"restaurant-booking/internal/dto"
	"restaurant-booking/internal/event"
	"restaurant-booking/internal/model"
	"restaurant-booking/internal/repository"
	pkgerrors "restaurant-booking/pkg/errors"
)

// 2025-03-03 为周一，测试夹具只配置周一营业时间 10:00-22:00
const monday = "2025-03-03"

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	repo      *repository.Repository
	db        *gorm.DB
	svc       ReservationService
	publisher *recordingPublisher
	alice     *model.Customer
	bob       *model.Customer
	tables    map[int]*model.Table // 按餐桌号索引
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func newFixture(t *testing.T, mutate ...func(*config.SchedulingConfig)) *fixture {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)
	repo := repository.NewRepository(db)

	cfg := config.SchedulingConfig{DefaultDurationHours: 2, Timezone: "UTC"}
	for _, m := range mutate {
		m(&cfg)
	}

	require.NoError(t, repo.OperatingHour.Create(ctx, &model.OperatingHour{
		DayOfWeek: "Monday", OpeningTime: model.NewTimeOfDay(10, 0, 0), ClosingTime: model.NewTimeOfDay(22, 0, 0),
	}))

	alice := &model.Customer{FirstName: "Alice", LastName: "Smith", PhoneNumber: "555-0001"}
	bob := &model.Customer{FirstName: "Bob", LastName: "Jones", PhoneNumber: "555-0002"}
	require.NoError(t, repo.Customer.Create(ctx, alice))
	require.NoError(t, repo.Customer.Create(ctx, bob))

	tables := make(map[int]*model.Table)
	for _, spec := range []struct {
		number     int
		capacity   int
		combinable bool
	}{{1, 4, true}, {2, 2, false}, {3, 6, true}} {
		tbl := &model.Table{
			TableNumber: spec.number, Capacity: spec.capacity, Location: model.LocationCenter,
			IsCombinable: spec.combinable, Status: model.TableAvailable,
		}
		require.NoError(t, repo.Table.Create(ctx, tbl))
		tables[spec.number] = tbl
	}

	pub := &recordingPublisher{}
	return &fixture{
		repo:      repo,
		db:        db,
		svc:       NewReservationService(cfg, repo, pub, zap.NewNop()),
		publisher: pub,
		alice:     alice,
		bob:       bob,
		tables:    tables,
	}
}

func (f *fixture) book(t *testing.T, customer *model.Customer, at string, status string, tableNumbers ...int) (*dto.ReservationResponse, error) {
	t.Helper()
	ids := make([]uint, 0, len(tableNumbers))
	for _, n := range tableNumbers {
		ids = append(ids, f.tables[n].ID)
	}
	return f.svc.Create(context.Background(), &dto.CreateReservationRequest{
		CustomerID:      customer.ID,
		PartySize:       2,
		ReservationDate: monday,
		ReservationTime: at,
		TableIDs:        ids,
		Status:          status,
	})
}

func (f *fixture) mustBook(t *testing.T, customer *model.Customer, at string, status string, tableNumbers ...int) *dto.ReservationResponse {
	t.Helper()
	res, err := f.book(t, customer, at, status, tableNumbers...)
	require.NoError(t, err)
	return res
}

func (f *fixture) tableStatus(t *testing.T, number int) model.TableStatus {
	t.Helper()
	tbl, err := f.repo.Table.GetByID(context.Background(), f.tables[number].ID)
	require.NoError(t, err)
	return tbl.Status
}

func assertCode(t *testing.T, err error, want *pkgerrors.Error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, want, "实际错误: %v", err)
}

// ────────────────────── Create ──────────────────────

func TestReservation_Create_Success(t *testing.T) {
	f := newFixture(t)

	res := f.mustBook(t, f.alice, "12:00", "", 1, 3)

	assert.Equal(t, "Confirmed", res.Status, "缺省状态为 Confirmed")
	assert.Equal(t, 2, res.DurationHours, "缺省时长取配置值")
	assert.Equal(t, "14:00", res.EndTime)
	assert.Equal(t, 10, res.AssignedCapacity, "assigned_capacity 为餐桌座位之和")
	assert.NotEmpty(t, res.BookingTimestamp)
	require.Len(t, res.Tables, 2)
	assert.Equal(t, 1, res.Tables[0].TableNumber)
	require.NotNil(t, res.Customer)
	assert.Equal(t, "Alice Smith", res.Customer.Name)

	assert.Equal(t, model.TableReserved, f.tableStatus(t, 1))
	assert.Equal(t, model.TableReserved, f.tableStatus(t, 3))
	assert.Equal(t, []string{event.TypeReservationCreated}, f.publisher.types())
}

func TestReservation_Create_WithoutTables(t *testing.T) {
	f := newFixture(t)

	res := f.mustBook(t, f.alice, "12:00", "")
	assert.Empty(t, res.Tables)
	assert.Equal(t, 0, res.AssignedCapacity)
}

func TestReservation_Create_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &dto.CreateReservationRequest{
		CustomerID: f.alice.ID, PartySize: 0, ReservationDate: monday, ReservationTime: "12:00",
	})
	assertCode(t, err, ErrInvalidPartySize)

	_, err = f.book(t, f.alice, "12:00", "Completed", 1)
	assertCode(t, err, ErrInvalidInitialStatus)

	_, err = f.svc.Create(ctx, &dto.CreateReservationRequest{
		CustomerID: 999, PartySize: 2, ReservationDate: monday, ReservationTime: "12:00",
	})
	assertCode(t, err, ErrCustomerNotFound)

	_, err = f.svc.Create(ctx, &dto.CreateReservationRequest{
		CustomerID: f.alice.ID, PartySize: 2, ReservationDate: monday, ReservationTime: "12:00", TableIDs: []uint{999},
	})
	assertCode(t, err, ErrReservationTable)
	assert.Contains(t, err.Error(), "999", "错误应指明缺失的餐桌")
}

func TestReservation_Create_OperatingHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &dto.CreateReservationRequest{
		CustomerID: f.alice.ID, PartySize: 2, ReservationDate: "2025-03-04", ReservationTime: "12:00",
	})
	assertCode(t, err, ErrNoHoursDefined)

	_, err = f.book(t, f.alice, "09:59", "", 1)
	assertCode(t, err, ErrOutsideHours)

	_, err = f.book(t, f.alice, "22:01", "", 1)
	assertCode(t, err, ErrOutsideHours)

	// 营业时间为闭区间，且默认只校验开始时刻
	res, err := f.book(t, f.alice, "22:00", "", 1)
	require.NoError(t, err)
	assert.Equal(t, "22:00", res.ReservationTime)
}

func TestReservation_Create_EnforceClosingTime(t *testing.T) {
	f := newFixture(t, func(c *config.SchedulingConfig) { c.EnforceClosingTime = true })

	_, err := f.book(t, f.alice, "21:00", "", 1)
	assertCode(t, err, ErrOutsideHours)

	_, err = f.book(t, f.alice, "20:00", "", 1)
	assert.NoError(t, err, "恰好在打烊时结束应允许")
}

// ────────────────────── 冲突检测 ──────────────────────

func TestReservation_Create_TableTimeConflict(t *testing.T) {
	f := newFixture(t)

	f.mustBook(t, f.alice, "12:00", "", 1)

	_, err := f.book(t, f.bob, "13:00", "", 1)
	assertCode(t, err, ErrTimeConflict)
	assert.Contains(t, err.Error(), "table 1", "错误应指明冲突的餐桌号")

	// 首尾相接不算冲突；Reserved 状态本身不阻止预订
	_, err = f.book(t, f.bob, "14:00", "", 1)
	assert.NoError(t, err)
	_, err = f.book(t, f.bob, "10:00", "", 1)
	assert.NoError(t, err)
}

func TestReservation_Create_CustomerDoubleBooking(t *testing.T) {
	f := newFixture(t)

	f.mustBook(t, f.alice, "12:00", "", 1)

	_, err := f.book(t, f.alice, "13:30", "", 3)
	assertCode(t, err, ErrCustomerDoubleBooked)

	_, err = f.book(t, f.alice, "14:00", "", 3)
	assert.NoError(t, err, "同一顾客首尾相接的预订应允许")
}

func TestReservation_PendingDoesNotBlock(t *testing.T) {
	f := newFixture(t)

	f.mustBook(t, f.alice, "12:00", "Pending", 1)

	_, err := f.book(t, f.bob, "12:00", "", 1)
	assert.NoError(t, err, "Pending 预订不参与冲突检测")
}

func TestReservation_CancelledDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1 := f.mustBook(t, f.alice, "12:00", "", 1)
	_, err := f.svc.UpdateStatus(ctx, r1.ID, "Cancelled")
	require.NoError(t, err)

	_, err = f.book(t, f.bob, "12:00", "", 1)
	assert.NoError(t, err)
}

func TestReservation_TableAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Table.UpdateStatus(ctx, []uint{f.tables[2].ID}, model.TableMaintenance))
	_, err := f.book(t, f.alice, "12:00", "", 2)
	assertCode(t, err, ErrTableNotAvailable)

	require.NoError(t, f.repo.Table.UpdateStatus(ctx, []uint{f.tables[2].ID}, model.TableSpecialEvent))
	_, err = f.book(t, f.alice, "12:00", "", 2)
	assertCode(t, err, ErrTableNotAvailable)

	require.NoError(t, f.repo.Table.UpdateStatus(ctx, []uint{f.tables[2].ID}, model.TableOccupied))
	_, err = f.book(t, f.alice, "18:00", "", 2)
	assert.NoError(t, err, "Occupied 仅反映当前占用，不阻止其他时段的预订")
}

func TestReservation_StrictTableStatus(t *testing.T) {
	f := newFixture(t, func(c *config.SchedulingConfig) { c.StrictTableStatus = true })

	f.mustBook(t, f.alice, "12:00", "", 1)

	_, err := f.book(t, f.bob, "18:00", "", 1)
	assertCode(t, err, ErrTableNotAvailable)
}

func TestReservation_FailedCreateRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Table.UpdateStatus(ctx, []uint{f.tables[3].ID}, model.TableMaintenance))
	_, err := f.book(t, f.alice, "12:00", "", 1, 3)
	assertCode(t, err, ErrTableNotAvailable)

	assert.Equal(t, model.TableAvailable, f.tableStatus(t, 1))
	list, err := f.svc.List(ctx, &dto.ReservationListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.publisher.types(), "失败的操作不应发布事件")
}

// ────────────────────── 状态机 ──────────────────────

func TestReservation_StatusLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "", 1)

	seated, err := f.svc.UpdateStatus(ctx, res.ID, "Seated")
	require.NoError(t, err)
	assert.Equal(t, "Seated", seated.Status)
	assert.Equal(t, model.TableOccupied, f.tableStatus(t, 1))

	completed, err := f.svc.UpdateStatus(ctx, res.ID, "Completed")
	require.NoError(t, err)
	assert.Equal(t, "Completed", completed.Status)
	assert.Equal(t, model.TableAvailable, f.tableStatus(t, 1))

	customer, err := f.repo.Customer.GetByID(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, customer.VisitCount, "完成时到店次数加一")

	_, err = f.svc.UpdateStatus(ctx, res.ID, "Completed")
	assertCode(t, err, ErrInvalidTransition)
	_, err = f.svc.UpdateStatus(ctx, res.ID, "Cancelled")
	assertCode(t, err, ErrInvalidTransition)

	customer, err = f.repo.Customer.GetByID(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, customer.VisitCount, "被拒绝的迁移不应再次计数")
}

func TestReservation_InvalidTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "", 1)

	_, err := f.svc.UpdateStatus(ctx, res.ID, "Completed")
	assertCode(t, err, ErrInvalidTransition)

	same, err := f.svc.UpdateStatus(ctx, res.ID, "Confirmed")
	require.NoError(t, err, "非终态的同状态请求为空操作")
	assert.Equal(t, "Confirmed", same.Status)

	_, err = f.svc.UpdateStatus(ctx, res.ID, "Unknown")
	assertCode(t, err, ErrInvalidReservation)

	_, err = f.svc.UpdateStatus(ctx, 999, "Seated")
	assertCode(t, err, ErrReservationNotFound)

	assert.Equal(t, []string{event.TypeReservationCreated}, f.publisher.types(), "空操作不发布状态事件")
}

func TestReservation_PendingToConfirmedRechecksConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.mustBook(t, f.alice, "12:00", "Pending", 1)
	f.mustBook(t, f.bob, "13:00", "", 1)

	_, err := f.svc.UpdateStatus(ctx, pending.ID, "Confirmed")
	assertCode(t, err, ErrTimeConflict)

	got, err := f.svc.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pending", got.Status)
}

func TestReservation_CancelReleasesTables(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "", 1, 3)
	_, err := f.svc.UpdateStatus(ctx, res.ID, "Cancelled")
	require.NoError(t, err)

	assert.Equal(t, model.TableAvailable, f.tableStatus(t, 1))
	assert.Equal(t, model.TableAvailable, f.tableStatus(t, 3))

	customer, err := f.repo.Customer.GetByID(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, customer.VisitCount, "取消不计到店次数")
}

// ────────────────────── 餐桌释放规则 ──────────────────────

func TestReservation_ReleaseKeepsTableHeldByOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lunch := f.mustBook(t, f.alice, "12:00", "", 1)
	dinner := f.mustBook(t, f.bob, "18:00", "", 1)

	_, err := f.svc.UpdateStatus(ctx, lunch.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, model.TableReserved, f.tableStatus(t, 1), "仍被其他预订持有的餐桌保持 Reserved")

	_, err = f.svc.UpdateStatus(ctx, dinner.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, model.TableAvailable, f.tableStatus(t, 1))
}

func TestReservation_ReleaseKeepsTableOccupiedWhileOthersSeated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lunch := f.mustBook(t, f.alice, "12:00", "", 1)
	_, err := f.svc.UpdateStatus(ctx, lunch.ID, "Seated")
	require.NoError(t, err)
	require.Equal(t, model.TableOccupied, f.tableStatus(t, 1))

	dinner := f.mustBook(t, f.bob, "18:00", "", 1)
	assert.Equal(t, model.TableOccupied, f.tableStatus(t, 1), "新预订不应把已入座的餐桌降级为 Reserved")

	_, err = f.svc.UpdateStatus(ctx, dinner.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, model.TableOccupied, f.tableStatus(t, 1), "其他预订的顾客仍在座，餐桌保持 Occupied")

	later := f.mustBook(t, f.bob, "19:00", "", 1)
	_, err = f.svc.UpdateStatus(ctx, lunch.ID, "Completed")
	require.NoError(t, err)
	assert.Equal(t, model.TableReserved, f.tableStatus(t, 1), "入座顾客离开后，仍被后续预订持有的餐桌为 Reserved")

	_, err = f.svc.UpdateStatus(ctx, later.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, model.TableAvailable, f.tableStatus(t, 1))
}

func TestReservation_ReleaseKeepsManualOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "", 1)
	require.NoError(t, f.repo.Table.UpdateStatus(ctx, []uint{f.tables[1].ID}, model.TableMaintenance))

	_, err := f.svc.UpdateStatus(ctx, res.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, model.TableMaintenance, f.tableStatus(t, 1), "人工停用状态不被释放覆盖")
}

// ────────────────────── Update ──────────────────────

func TestReservation_Update_ExcludesItself(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "", 1)

	at := "13:00"
	updated, err := f.svc.Update(ctx, res.ID, &dto.UpdateReservationRequest{ReservationTime: &at})
	require.NoError(t, err, "与自身旧时段重叠不算冲突")
	assert.Equal(t, "13:00", updated.ReservationTime)
	assert.Equal(t, "15:00", updated.EndTime)
}

func TestReservation_Update_ConflictRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustBook(t, f.alice, "12:00", "", 1)
	res := f.mustBook(t, f.bob, "16:00", "", 1)

	at := "13:00"
	_, err := f.svc.Update(ctx, res.ID, &dto.UpdateReservationRequest{ReservationTime: &at})
	assertCode(t, err, ErrTimeConflict)

	got, err := f.svc.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "16:00", got.ReservationTime, "被拒绝的更新不应落库")
}

func TestReservation_Update_ReplaceTables(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "", 1)

	ids := []uint{f.tables[3].ID}
	updated, err := f.svc.Update(ctx, res.ID, &dto.UpdateReservationRequest{TableIDs: &ids})
	require.NoError(t, err)

	require.Len(t, updated.Tables, 1)
	assert.Equal(t, 3, updated.Tables[0].TableNumber)
	assert.Equal(t, 6, updated.AssignedCapacity)
	assert.Equal(t, model.TableAvailable, f.tableStatus(t, 1), "被替换的餐桌应释放")
	assert.Equal(t, model.TableReserved, f.tableStatus(t, 3))
}

func TestReservation_Update_FieldsAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "", 1)

	party := 5
	notes := "birthday"
	pref := "Window Seat"
	status := "Seated"
	updated, err := f.svc.Update(ctx, res.ID, &dto.UpdateReservationRequest{
		PartySize: &party, Notes: &notes, RequestedPreference: &pref, Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.PartySize)
	assert.Equal(t, "birthday", updated.Notes)
	require.NotNil(t, updated.RequestedPreference)
	assert.Equal(t, "Window Seat", *updated.RequestedPreference)
	assert.Equal(t, "Seated", updated.Status)
	assert.Equal(t, model.TableOccupied, f.tableStatus(t, 1))
	assert.Contains(t, f.publisher.types(), event.TypeReservationStatusChanged)

	back := "Confirmed"
	_, err = f.svc.Update(ctx, res.ID, &dto.UpdateReservationRequest{Status: &back})
	assertCode(t, err, ErrInvalidTransition)
}

func TestReservation_Update_TerminalScheduleLocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "", 1)
	_, err := f.svc.UpdateStatus(ctx, res.ID, "Cancelled")
	require.NoError(t, err)

	at := "15:00"
	_, err = f.svc.Update(ctx, res.ID, &dto.UpdateReservationRequest{ReservationTime: &at})
	assertCode(t, err, ErrReservationNotActive)

	notes := "no-show"
	updated, err := f.svc.Update(ctx, res.ID, &dto.UpdateReservationRequest{Notes: &notes})
	require.NoError(t, err, "终态预订仍可修改备注")
	assert.Equal(t, "no-show", updated.Notes)
}

// ────────────────────── Merge / Demerge ──────────────────────

func TestReservation_MergeTables(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "")

	merged, err := f.svc.MergeTables(ctx, res.ID, []uint{f.tables[1].ID})
	require.NoError(t, err)
	assert.Equal(t, model.TableReserved, f.tableStatus(t, 1))
	assert.Equal(t, 4, merged.AssignedCapacity)

	_, err = f.svc.MergeTables(ctx, res.ID, []uint{f.tables[2].ID})
	assertCode(t, err, ErrNotCombinable)
	assert.Contains(t, err.Error(), "table 2")
	assert.Equal(t, model.TableAvailable, f.tableStatus(t, 2), "不可合并的餐桌保持原状")

	again, err := f.svc.MergeTables(ctx, res.ID, []uint{f.tables[1].ID, f.tables[3].ID})
	require.NoError(t, err, "已关联的餐桌应跳过")
	assert.Len(t, again.Tables, 2)
	assert.Equal(t, 10, again.AssignedCapacity)
	assert.Contains(t, f.publisher.types(), event.TypeReservationTablesMerged)
}

func TestReservation_MergeIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "")

	_, err := f.svc.MergeTables(ctx, res.ID, []uint{f.tables[1].ID, f.tables[2].ID})
	assertCode(t, err, ErrNotCombinable)
	assert.Equal(t, model.TableAvailable, f.tableStatus(t, 1), "整批失败时不应部分生效")

	got, err := f.svc.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tables)
}

func TestReservation_MergeIntoTerminalRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "")
	_, err := f.svc.UpdateStatus(ctx, res.ID, "Cancelled")
	require.NoError(t, err)

	_, err = f.svc.MergeTables(ctx, res.ID, []uint{f.tables[1].ID})
	assertCode(t, err, ErrReservationNotActive)
}

func TestReservation_DemergeTables(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "", 1, 3)

	freed, err := f.svc.DemergeTables(ctx, res.ID)
	require.NoError(t, err)
	assert.Empty(t, freed.Tables)
	assert.Equal(t, 0, freed.AssignedCapacity)
	assert.Equal(t, model.TableAvailable, f.tableStatus(t, 1))
	assert.Equal(t, model.TableAvailable, f.tableStatus(t, 3))

	_, err = f.svc.DemergeTables(ctx, res.ID)
	assert.NoError(t, err, "重复解除应幂等")
}

// ────────────────────── Delete / List ──────────────────────

func TestReservation_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.mustBook(t, f.alice, "12:00", "", 1)
	require.NoError(t, f.svc.Delete(ctx, res.ID))

	assert.Equal(t, model.TableAvailable, f.tableStatus(t, 1))
	_, err := f.svc.GetByID(ctx, res.ID)
	assertCode(t, err, ErrReservationNotFound)

	var links int64
	f.db.Model(&model.ReservationTable{}).Where("reservation_id = ?", res.ID).Count(&links)
	assert.Zero(t, links)

	assertCode(t, f.svc.Delete(ctx, res.ID), ErrReservationNotFound)
}

func TestReservation_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mustBook(t, f.alice, "18:00", "", 1)
	f.mustBook(t, f.bob, "12:00", "Pending", 3)

	all, err := f.svc.List(ctx, &dto.ReservationListRequest{Date: monday})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "12:00", all[0].ReservationTime, "按时间排序")

	pending, err := f.svc.List(ctx, &dto.ReservationListRequest{Status: "Pending"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, f.bob.ID, pending[0].CustomerID)

	byCustomer, err := f.svc.List(ctx, &dto.ReservationListRequest{CustomerID: f.alice.ID})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 1)
}

func TestReservation_BookingTimestampIsUTC(t *testing.T) {
	f := newFixture(t)
	svc := f.svc.(*reservationService)
	fixed := time.Date(2025, 3, 1, 8, 30, 0, 0, time.FixedZone("UTC+8", 8*3600))
	svc.now = func() time.Time { return fixed }

	res := f.mustBook(t, f.alice, "12:00", "", 1)
	assert.Equal(t, "2025-03-01T00:30:00Z", res.BookingTimestamp)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, event.Event) error {
	return errors.New("broker unreachable")
}

func (failingPublisher) Close() error { return nil }

func TestReservation_PublishFailureLoggedOnceAndIgnored(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zap.WarnLevel)
	svc := NewReservationService(config.SchedulingConfig{DefaultDurationHours: 2, Timezone: "UTC"},
		f.repo, failingPublisher{}, zap.New(core))

	res, err := svc.Create(context.Background(), &dto.CreateReservationRequest{
		CustomerID:      f.alice.ID,
		PartySize:       2,
		ReservationDate: monday,
		ReservationTime: "12:00",
		TableIDs:        []uint{f.tables[1].ID},
	})
	require.NoError(t, err, "事件发布失败不影响预订")
	assert.Equal(t, model.TableReserved, f.tableStatus(t, 1))

	entries := logs.FilterMessage("发布预订事件失败").All()
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(res.ID), entries[0].ContextMap()["reservation_id"])
	assert.Equal(t, 1, logs.Len(), "只记录一条告警")
}
