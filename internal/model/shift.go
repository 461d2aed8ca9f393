package model

import "time"

// Shift 班次表 — 对应 shifts
// date 为 UTC 日历日（时刻部分恒为 00:00:00）；
// start_time / end_time 为 "HH:mm" 墙上时钟字符串，同日内 end 严格晚于 start
type Shift struct {
	ShiftID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	EmployeeID string    `gorm:"type:uuid;not null;index:idx_shifts_employee_date" json:"employee_id"`
	Date       time.Time `gorm:"type:date;not null;index:idx_shifts_employee_date" json:"date"`
	StartTime  string    `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime    string    `gorm:"type:varchar(5);not null"                       json:"end_time"`
	VersionedModel

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"employee,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }
