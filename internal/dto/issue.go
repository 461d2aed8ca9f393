package dto

// ── 问题反馈模块 DTO ──

// IssueShiftData 创建问题时随附的班次快照
type IssueShiftData struct {
	Date         string `json:"date"`
	EmployeeName string `json:"employee_name"`
	EmployeeCode string `json:"employee_code"`
	Department   string `json:"department"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// CreateIssueRequest 创建问题请求
type CreateIssueRequest struct {
	Title       string          `json:"title"       binding:"required,max=200"`
	Description string          `json:"description" binding:"required,max=2000"`
	Priority    string          `json:"priority"    binding:"omitempty"`
	ShiftID     *string         `json:"shift_id"    binding:"omitempty,uuid"`
	ShiftData   *IssueShiftData `json:"shift_data"`
}

// UpdateIssueRequest 管理员更新问题请求
type UpdateIssueRequest struct {
	AdminResponse      *string              `json:"admin_response" binding:"omitempty,max=1000"`
	AdminNotes         *string              `json:"admin_notes"    binding:"omitempty,max=1000"`
	Status             *string              `json:"status"`
	CorrectedShiftData *CorrectedShiftInput `json:"corrected_shift_data"`
}

// CorrectedShiftInput 修正班次数据
// 同时给出起止时刻且问题关联了班次时，将触发班次重校验与更新
type CorrectedShiftInput struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// IssueListRequest 问题列表查询参数
type IssueListRequest struct {
	PaginationRequest
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	Search     string `form:"search"`
	ShowSolved bool   `form:"show_solved"`
}

// IssueResponse 问题信息响应
type IssueResponse struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Status             string          `json:"status"`
	Priority           string          `json:"priority"`
	IsRead             bool            `json:"is_read"`
	ShiftID            *string         `json:"shift_id,omitempty"`
	ShiftData          *IssueShiftData `json:"shift_data,omitempty"`
	AdminResponse      string          `json:"admin_response,omitempty"`
	AdminNotes         string          `json:"admin_notes,omitempty"`
	CorrectedShiftData *CorrectedShiftInput `json:"corrected_shift_data,omitempty"`
	CreatedBy          *IssueCreator   `json:"created_by,omitempty"`
	ResolvedAt         *string         `json:"resolved_at,omitempty"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
}

// IssueCreator 问题创建者简要信息
type IssueCreator struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UnreadCountResponse 未读问题数响应
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
