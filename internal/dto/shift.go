package dto

// ── 班次模块 DTO ──

// CreateShiftRequest 创建班次请求
type CreateShiftRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Date       string `json:"date"        binding:"required"` // "2026-03-02"
	StartTime  string `json:"start_time"  binding:"required"` // "09:00"
	EndTime    string `json:"end_time"    binding:"required"` // "13:00"
}

// UpdateShiftRequest 更新班次请求（未指定字段沿用当前值）
type UpdateShiftRequest struct {
	EmployeeID *string `json:"employee_id" binding:"omitempty,uuid"`
	Date       *string `json:"date"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
}

// ShiftListRequest 班次列表查询参数
type ShiftListRequest struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Date       string `form:"date"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
}

// WorkingHoursRequest 工时统计查询参数
type WorkingHoursRequest struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
}

// ShiftResponse 班次信息响应（含读时联查的员工信息）
type ShiftResponse struct {
	ID        string         `json:"id"`
	Date      string         `json:"date"` // "2026-03-02"
	StartTime string         `json:"start_time"`
	EndTime   string         `json:"end_time"`
	Duration  float64        `json:"duration"` // 小时
	Employee  *EmployeeBrief `json:"employee,omitempty"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// ShiftValidationResult 班次业务校验结果
// 校验失败不是系统错误：全部原因累积返回，客户端一次性展示
type ShiftValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// WorkingHoursShift 工时明细中的单个班次
type WorkingHoursShift struct {
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Duration  float64 `json:"duration"`
}

// WorkingHoursResponse 单员工工时统计
type WorkingHoursResponse struct {
	EmployeeID   string              `json:"employee_id"`
	Name         string              `json:"name"`
	EmployeeCode string              `json:"employee_code"`
	TotalHours   float64             `json:"total_hours"`
	ShiftCount   int                 `json:"shift_count"`
	Shifts       []WorkingHoursShift `json:"shifts"`
}
