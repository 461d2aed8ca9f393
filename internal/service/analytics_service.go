package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"shift-sync/backend/internal/dto"
	"shift-sync/backend/internal/repository"
	"shift-sync/backend/pkg/timeutil"
)

// AnalyticsService 分析业务接口
type AnalyticsService interface {
	// Dashboard 管理员看板，范围缺省为最近 30 天
	Dashboard(ctx context.Context, req *dto.AnalyticsRequest) (*dto.DashboardResponse, error)
}

type analyticsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAnalyticsService 创建 AnalyticsService 实例
func NewAnalyticsService(repo *repository.Repository, logger *zap.Logger) AnalyticsService {
	return &analyticsService{repo: repo, logger: logger}
}

func (s *analyticsService) Dashboard(ctx context.Context, req *dto.AnalyticsRequest) (*dto.DashboardResponse, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -30)

	if req.StartDate != "" {
		d, err := parseDate(req.StartDate)
		if err != nil {
			return nil, &ShiftValidationError{Errors: []string{errInvalidDate(req.StartDate)}}
		}
		start = d
	}
	if req.EndDate != "" {
		d, err := parseDate(req.EndDate)
		if err != nil {
			return nil, &ShiftValidationError{Errors: []string{errInvalidDate(req.EndDate)}}
		}
		end = d
	}

	shifts, err := s.repo.Shift.List(ctx, repository.ShiftFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		s.logger.Error("列出班次失败", zap.Error(err))
		return nil, err
	}

	totalEmployees, err := s.repo.Employee.Count(ctx)
	if err != nil {
		s.logger.Error("统计员工数失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.DashboardResponse{
		TotalShifts:    len(shifts),
		TotalEmployees: totalEmployees,
	}

	dailyHours := make(map[string]float64)
	weeklyHours := make(map[string]float64)
	type deptAgg struct {
		hours     float64
		shifts    int
		employees map[string]bool
	}
	deptStats := make(map[string]*deptAgg)
	activeEmployees := make(map[string]bool)

	for i := range shifts {
		sh := &shifts[i]
		hours := timeutil.DurationHours(sh.StartTime, sh.EndTime)
		resp.TotalHours += hours
		activeEmployees[sh.EmployeeID] = true

		day := sh.Date.Format("2006-01-02")
		dailyHours[day] += hours
		weeklyHours[weekStart(sh.Date)] += hours

		if sh.Employee != nil {
			dept := sh.Employee.Department
			agg, ok := deptStats[dept]
			if !ok {
				agg = &deptAgg{employees: make(map[string]bool)}
				deptStats[dept] = agg
			}
			agg.hours += hours
			agg.shifts++
			agg.employees[sh.EmployeeID] = true
		}
	}

	if resp.TotalShifts > 0 {
		resp.AvgHoursPerShift = resp.TotalHours / float64(resp.TotalShifts)
	}
	if len(activeEmployees) > 0 {
		resp.AvgHoursPerEmployee = resp.TotalHours / float64(len(activeEmployees))
	}

	resp.DailyTrends = sortedTrends(dailyHours)
	resp.WeeklyTrends = sortedTrends(weeklyHours)

	resp.DepartmentPerformance = make([]dto.DepartmentPerformance, 0, len(deptStats))
	for dept, agg := range deptStats {
		resp.DepartmentPerformance = append(resp.DepartmentPerformance, dto.DepartmentPerformance{
			Department:    dept,
			TotalHours:    agg.hours,
			TotalShifts:   agg.shifts,
			EmployeeCount: len(agg.employees),
		})
	}
	sort.Slice(resp.DepartmentPerformance, func(i, j int) bool {
		return resp.DepartmentPerformance[i].TotalHours > resp.DepartmentPerformance[j].TotalHours
	})

	return resp, nil
}

// ── 内部辅助方法 ──

// weekStart 返回所在周的周一日期（ISO 周）
func weekStart(d time.Time) string {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset).Format("2006-01-02")
}

func sortedTrends(m map[string]float64) []dto.TrendPoint {
	points := make([]dto.TrendPoint, 0, len(m))
	for date, hours := range m {
		points = append(points, dto.TrendPoint{Date: date, Hours: hours})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}
