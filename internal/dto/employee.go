package dto

// ── 员工模块 DTO ──

// CreateEmployeeRequest 创建员工请求
type CreateEmployeeRequest struct {
	Name         string `json:"name"          binding:"required,min=1,max=100"`
	EmployeeCode string `json:"employee_code" binding:"required,min=1,max=50"`
	Department   string `json:"department"    binding:"required,min=1,max=100"`
}

// UpdateEmployeeRequest 更新员工请求
type UpdateEmployeeRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=1,max=100"`
	EmployeeCode *string `json:"employee_code" binding:"omitempty,min=1,max=50"`
	Department   *string `json:"department"    binding:"omitempty,min=1,max=100"`
}

// EmployeeResponse 员工信息响应
type EmployeeResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	EmployeeCode string `json:"employee_code"`
	Department   string `json:"department"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}
