package service

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	"restaurant-booking/internal/dto"
	"restaurant-booking/internal/model"
)

// ═══════════════════════════════════════════════════════════
// 日报导出
// ═══════════════════════════════════════════════════════════
//
// xlsx：单 Sheet，标题行 + 表头 + 每条预订一行
// ics：每条预订一个 VEVENT，时间按 scheduling.timezone 解释

var reportHeaders = []string{"预订号", "时间", "时长(小时)", "顾客", "电话", "人数", "餐桌", "状态", "偏好", "备注"}

func (s *reportService) exportXLSX(report *dto.DailyReportResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "日报"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	widths := []float64{10, 8, 10, 18, 16, 8, 14, 12, 14, 30}
	for i, w := range widths {
		f.SetColWidth(sheetName, colName(i), colName(i), w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	lastCol := colName(len(reportHeaders) - 1)
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s 预订日报（共 %d 条）", report.Date, report.TotalReservations))
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, h := range reportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(lastCol, row), headerStyle)

	// 数据行
	for _, item := range report.Items {
		row++
		preference := ""
		if item.RequestedPreference != nil {
			preference = *item.RequestedPreference
		}
		values := []interface{}{
			item.ReservationID,
			item.ReservationTime,
			item.DurationHours,
			item.CustomerName,
			item.PhoneNumber,
			item.PartySize,
			joinTableNumbers(item.Tables),
			item.Status,
			preference,
			item.Notes,
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *reportService) exportICS(day model.Date, list []model.Reservation) (*bytes.Buffer, error) {
	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//restaurant-booking//daily report//EN")
	cal.SetXWRCalName(fmt.Sprintf("Reservations %s", day))

	stamp := s.now().UTC()
	for i := range list {
		r := &list[i]
		ev := cal.AddEvent(fmt.Sprintf("reservation-%d@restaurant-booking", r.ID))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(r.Start().On(r.ReservationDate, loc))
		ev.SetEndAt(r.End().On(r.ReservationDate, loc))

		name := fmt.Sprintf("reservation %d", r.ID)
		if r.Customer != nil {
			name = r.Customer.FullName()
		}
		ev.SetSummary(fmt.Sprintf("%s (%d) [%s]", name, r.PartySize, r.Status))

		tables := make([]int, 0, len(r.Tables))
		for _, rt := range r.Tables {
			if rt.Table != nil {
				tables = append(tables, rt.Table.TableNumber)
			}
		}
		if len(tables) > 0 {
			ev.SetLocation("Table " + joinTableNumbers(tables))
		}

		var desc []string
		if r.Customer != nil {
			desc = append(desc, "Phone: "+r.Customer.PhoneNumber)
		}
		if r.RequestedPreference != nil {
			desc = append(desc, "Preference: "+string(*r.RequestedPreference))
		}
		if r.Notes != "" {
			desc = append(desc, "Notes: "+r.Notes)
		}
		if len(desc) > 0 {
			ev.SetDescription(strings.Join(desc, "\n"))
		}
	}

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func joinTableNumbers(numbers []int) string {
	parts := make([]string, 0, len(numbers))
	for _, n := range numbers {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ", ")
}
