package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"shift-sync/backend/internal/dto"
	"shift-sync/backend/internal/repository"
	"shift-sync/backend/pkg/timeutil"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = errors.New("所选范围内无班次数据")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 工时报表导出为 Excel (.xlsx)，按员工一行汇总
//   - 班次日历导出为 iCalendar (RFC 5545)，供日历客户端订阅
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportWorkingHours 导出工时报表为 Excel
	ExportWorkingHours(ctx context.Context, req *dto.WorkingHoursRequest) (*bytes.Buffer, string, error)
	// ExportShiftCalendar 导出班次为 ICS 日历
	ExportShiftCalendar(ctx context.Context, req *dto.ShiftListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo     *repository.Repository
	shiftSvc ShiftService
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, shiftSvc ShiftService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, shiftSvc: shiftSvc, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportWorkingHours — 导出工时报表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 表头: | 姓名 | 员工编号 | 部门 | 班次数 | 总工时 |
//   - 每员工一行，按姓名排序（沿用工时统计的排序）

func (s *exportService) ExportWorkingHours(ctx context.Context, req *dto.WorkingHoursRequest) (*bytes.Buffer, string, error) {
	entries, err := s.shiftSvc.WorkingHours(ctx, req)
	if err != nil {
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", ErrExportNoData
	}

	departments := make(map[string]string, len(entries))
	employees, err := s.repo.Employee.List(ctx)
	if err != nil {
		s.logger.Error("列出员工失败", zap.Error(err))
		return nil, "", err
	}
	for i := range employees {
		departments[employees[i].EmployeeID] = employees[i].Department
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "工时报表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", "C", 16)
	f.SetColWidth(sheetName, "D", "D", 10)
	f.SetColWidth(sheetName, "E", "E", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	title := "工时报表"
	if req.StartDate != "" || req.EndDate != "" {
		title = fmt.Sprintf("工时报表 %s ~ %s", req.StartDate, req.EndDate)
	}
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", "E1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"姓名", "员工编号", "部门", "班次数", "总工时"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, fmt.Sprintf("%s2", col), h)
	}

	// 数据行
	row := 3
	for _, entry := range entries {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), entry.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), entry.EmployeeCode)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), departments[entry.EmployeeID])
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), entry.ShiftCount)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), entry.TotalHours)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("工时报表_%s.xlsx", time.Now().UTC().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportShiftCalendar — 导出班次为 ICS 日历
// ═══════════════════════════════════════════════════════════
//
// 每个班次生成一个 VEVENT：
//   - UID 取班次 ID，日历客户端重复导入不会产生重复事件
//   - DTSTART/DTEND 由 UTC 日历日 + "HH:mm" 墙上时刻组合而成

func (s *exportService) ExportShiftCalendar(ctx context.Context, req *dto.ShiftListRequest) (*bytes.Buffer, string, error) {
	shifts, err := s.shiftSvc.List(ctx, req)
	if err != nil {
		return nil, "", err
	}
	if len(shifts) == 0 {
		return nil, "", ErrExportNoData
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shift-sync//backend//CN")

	now := time.Now().UTC()
	for i := range shifts {
		sh := &shifts[i]
		date, err := time.ParseInLocation("2006-01-02", sh.Date, time.UTC)
		if err != nil {
			continue
		}
		start := date.Add(time.Duration(timeutil.TimeToMinutes(sh.StartTime)) * time.Minute)
		end := date.Add(time.Duration(timeutil.TimeToMinutes(sh.EndTime)) * time.Minute)

		evt := cal.AddEvent(sh.ID)
		evt.SetCreatedTime(now)
		evt.SetDtStampTime(now)
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		if sh.Employee != nil {
			evt.SetSummary(fmt.Sprintf("班次 %s", sh.Employee.Name))
			evt.SetDescription(fmt.Sprintf("%s (%s) %s - %s", sh.Employee.Name, sh.Employee.EmployeeCode, sh.StartTime, sh.EndTime))
		} else {
			evt.SetSummary("班次")
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())

	filename := fmt.Sprintf("班次日历_%s.ics", time.Now().UTC().Format("20060102"))
	return buf, filename, nil
}
