package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"restaurant-booking/config"
	"restaurant-booking/internal/model"
	"restaurant-booking/internal/repository"
	pkgerrors "restaurant-booking/pkg/errors"
)

// ── 预订模块业务错误 ──

var (
	ErrReservationNotFound  = pkgerrors.NotFound(14001, "预订不存在")
	ErrNoHoursDefined       = pkgerrors.Rule(14002, "当天未设置营业时间")
	ErrOutsideHours         = pkgerrors.Rule(14003, "预订时间不在营业时间内")
	ErrReservationTable     = pkgerrors.NotFound(14004, "餐桌不存在")
	ErrTableNotAvailable    = pkgerrors.Rule(14005, "餐桌当前不可预订")
	ErrTimeConflict         = pkgerrors.Rule(14006, "餐桌在该时段已被预订")
	ErrCustomerDoubleBooked = pkgerrors.Rule(14007, "顾客在该时段已有预订")
	ErrNotCombinable        = pkgerrors.Rule(14008, "餐桌不可合并")
	ErrInvalidTransition    = pkgerrors.Rule(14009, "不允许的预订状态变更")
	ErrReservationNotActive = pkgerrors.Rule(14010, "预订已结束，无法修改餐桌")
	ErrInvalidPartySize     = pkgerrors.Validation(14011, "用餐人数必须大于 0")
	ErrInvalidInitialStatus = pkgerrors.Validation(14012, "新预订只能为 Confirmed、Pending 或 Seated")
	ErrInvalidReservation   = pkgerrors.Validation(14013, "预订参数无效")
)

// transitions 允许的状态迁移；终态没有出边
var transitions = map[model.ReservationStatus][]model.ReservationStatus{
	model.ReservationPending:   {model.ReservationConfirmed, model.ReservationSeated, model.ReservationCancelled},
	model.ReservationConfirmed: {model.ReservationPending, model.ReservationSeated, model.ReservationCancelled},
	model.ReservationSeated:    {model.ReservationCompleted, model.ReservationCancelled},
}

func canTransition(from, to model.ReservationStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// overlaps 半开区间 [aStart, aEnd) 与 [bStart, bEnd) 是否相交，首尾相接不算冲突
func overlaps(aStart, aEnd, bStart, bEnd model.TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// slot 待校验的预订时段
type slot struct {
	date     model.Date
	start    model.TimeOfDay
	duration int
}

func (s slot) end() model.TimeOfDay {
	return s.start.Add(time.Duration(s.duration) * time.Hour)
}

func slotOf(r *model.Reservation) slot {
	return slot{date: r.ReservationDate, start: r.ReservationTime, duration: r.DurationHours}
}

// scheduler 预订调度规则，所有方法都在调用方的事务内执行
type scheduler struct {
	tx     *repository.Repository
	cfg    config.SchedulingConfig
	logger *zap.Logger
}

// checkHours 营业时间校验：开始时刻落在 [opening, closing] 内；
// 开启 enforce_closing_time 时结束时刻也不得晚于打烊
func (s *scheduler) checkHours(ctx context.Context, sl slot) error {
	day := model.WeekdayName(sl.date.Weekday())
	hours, err := s.tx.OperatingHour.GetByDay(ctx, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Detail(ErrNoHoursDefined, "%s (%s)", sl.date, day)
		}
		return err
	}

	if !hours.Covers(sl.start) {
		return pkgerrors.Detail(ErrOutsideHours, "%s %s, open %s-%s", day, sl.start, hours.OpeningTime, hours.ClosingTime)
	}
	if s.cfg.EnforceClosingTime && sl.end() > hours.ClosingTime {
		return pkgerrors.Detail(ErrOutsideHours, "%s ends %s after closing %s", day, sl.end(), hours.ClosingTime)
	}
	return nil
}

// checkCustomer 同一顾客同一天的 Confirmed/Seated 预订不得重叠
func (s *scheduler) checkCustomer(ctx context.Context, customerID uint, sl slot, excludeID uint) error {
	existing, err := s.tx.Reservation.ListBlockingByCustomer(ctx, customerID, sl.date, excludeID)
	if err != nil {
		return err
	}
	for i := range existing {
		r := &existing[i]
		if overlaps(sl.start, sl.end(), r.Start(), r.End()) {
			return pkgerrors.Detail(ErrCustomerDoubleBooked, "customer %d already booked %s %s-%s (reservation %d)",
				customerID, sl.date, r.Start(), r.End(), r.ID)
		}
	}
	return nil
}

// lockTables 按 ID 升序加锁读取餐桌，任一 ID 不存在即报错
func (s *scheduler) lockTables(ctx context.Context, ids []uint) ([]model.Table, error) {
	tables, err := s.tx.Table.GetByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tables) != len(ids) {
		found := make(map[uint]bool, len(tables))
		for _, t := range tables {
			found[t.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, pkgerrors.Detail(ErrReservationTable, "table id %d", id)
			}
		}
	}
	return tables, nil
}

// checkTables 逐张校验餐桌状态与时段冲突。
// held 为本预订已持有的餐桌，它们的 Reserved/Occupied 状态来自本预订自身，不视为不可用。
func (s *scheduler) checkTables(ctx context.Context, tables []model.Table, sl slot, excludeID uint, held map[uint]bool) error {
	for i := range tables {
		t := &tables[i]
		if !s.bookable(t, held[t.ID]) {
			return pkgerrors.Detail(ErrTableNotAvailable, "table %d is %s", t.TableNumber, t.Status)
		}

		existing, err := s.tx.Reservation.ListBlockingByTable(ctx, t.ID, sl.date, excludeID)
		if err != nil {
			return err
		}
		for j := range existing {
			r := &existing[j]
			if overlaps(sl.start, sl.end(), r.Start(), r.End()) {
				return pkgerrors.Detail(ErrTimeConflict, "table %d booked %s %s-%s (reservation %d)",
					t.TableNumber, sl.date, r.Start(), r.End(), r.ID)
			}
		}
	}
	return nil
}

// bookable 餐桌状态是否允许新的预订占用
func (s *scheduler) bookable(t *model.Table, heldBySelf bool) bool {
	if s.cfg.StrictTableStatus {
		if t.Status == model.TableAvailable {
			return true
		}
		return heldBySelf && (t.Status == model.TableReserved || t.Status == model.TableOccupied)
	}
	// Reserved/Occupied 只反映当前占用，是否冲突由时段判定
	return !t.Status.IsManualOverride()
}

// occupy 将餐桌标记为 Reserved（入座时为 Occupied），人工停用状态保持不变
func (s *scheduler) occupy(ctx context.Context, tables []model.Table, status model.ReservationStatus) error {
	target := model.TableReserved
	if status == model.ReservationSeated {
		target = model.TableOccupied
	}

	ids := make([]uint, 0, len(tables))
	for _, t := range tables {
		if t.Status.IsManualOverride() {
			continue
		}
		// 已有顾客入座的餐桌不降级为 Reserved
		if target == model.TableReserved && t.Status == model.TableOccupied {
			continue
		}
		ids = append(ids, t.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	return s.tx.Table.UpdateStatus(ctx, ids, target)
}

// release 预订不再占用餐桌时回收：仍被其他非终态预订持有的餐桌，
// 有其他预订已入座时保持 Occupied，否则为 Reserved；人工停用的餐桌保持原状，其余恢复 Available
func (s *scheduler) release(ctx context.Context, reservationID uint, tables []model.Table) error {
	var free, reserved, occupied []uint
	for _, t := range tables {
		if t.Status.IsManualOverride() {
			continue
		}
		holding, err := s.tx.Reservation.CountHoldingByTable(ctx, t.ID, reservationID)
		if err != nil {
			return err
		}
		if holding == 0 {
			free = append(free, t.ID)
			continue
		}
		seated, err := s.tx.Reservation.CountSeatedByTable(ctx, t.ID, reservationID)
		if err != nil {
			return err
		}
		if seated > 0 {
			occupied = append(occupied, t.ID)
		} else {
			reserved = append(reserved, t.ID)
		}
	}

	for status, ids := range map[model.TableStatus][]uint{
		model.TableAvailable: free,
		model.TableReserved:  reserved,
		model.TableOccupied:  occupied,
	} {
		if len(ids) == 0 {
			continue
		}
		if err := s.tx.Table.UpdateStatus(ctx, ids, status); err != nil {
			return err
		}
	}
	return nil
}

// capacityOf 餐桌总座位数
func capacityOf(tables []model.Table) int {
	total := 0
	for _, t := range tables {
		total += t.Capacity
	}
	return total
}

// uniqueIDs 去重并升序，固定加锁顺序
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func idSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
