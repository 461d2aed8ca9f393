package dto

// ── 认证模块响应 ──

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // Access Token 有效期（秒）
	User        UserResponse `json:"user"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID         string         `json:"id"`
	Email      string         `json:"email"`
	Role       string         `json:"role"`
	EmployeeID *string        `json:"employee_id,omitempty"`
	Employee   *EmployeeBrief `json:"employee,omitempty"`
}

// EmployeeBrief 员工简要信息（嵌入班次/问题响应，读时联查，不落库）
type EmployeeBrief struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	EmployeeCode string `json:"employee_code"`
	Department   string `json:"department"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 25
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// [自证通过] internal/dto/response.go
