package dto

// ── 分析模块 DTO ──

// AnalyticsRequest 看板查询参数（缺省为最近 30 天）
type AnalyticsRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// TrendPoint 时间趋势数据点
type TrendPoint struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// DepartmentPerformance 部门维度统计
type DepartmentPerformance struct {
	Department    string  `json:"department"`
	TotalHours    float64 `json:"total_hours"`
	TotalShifts   int     `json:"total_shifts"`
	EmployeeCount int     `json:"employee_count"`
}

// DashboardResponse 管理员看板响应
type DashboardResponse struct {
	TotalHours           float64                 `json:"total_hours"`
	TotalShifts          int                     `json:"total_shifts"`
	TotalEmployees       int64                   `json:"total_employees"`
	AvgHoursPerShift     float64                 `json:"avg_hours_per_shift"`
	AvgHoursPerEmployee  float64                 `json:"avg_hours_per_employee"`
	DailyTrends          []TrendPoint            `json:"daily_trends"`
	WeeklyTrends         []TrendPoint            `json:"weekly_trends"`
	DepartmentPerformance []DepartmentPerformance `json:"department_performance"`
}
