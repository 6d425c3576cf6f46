package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Staff is a clinic employee on the payroll. Salary is the base monthly
// salary; month-specific overrides live in StaffMonthlySalary.
type Staff struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Name        string          `gorm:"size:120;not null" json:"name"`
	Designation string          `gorm:"size:120" json:"designation"`
	Salary      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"salary"`
	Active      *bool           `gorm:"default:true" json:"active"`
	JoinedAt    *time.Time      `json:"joined_at"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewStaff struct {
	Name        string          `json:"name" binding:"required"`
	Designation string          `json:"designation"`
	Salary      decimal.Decimal `json:"salary"`
	JoinedAt    *time.Time      `json:"joined_at"`
}

func (input *NewStaff) validate() error {
	if input.Name == "" {
		return errors.New("staff name is required")
	}
	if input.Salary.IsNegative() {
		return errors.New("staff salary cannot be negative")
	}
	return nil
}

func CreateStaff(ctx context.Context, actor Actor, input *NewStaff) (*Staff, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	staff := Staff{
		Name:        input.Name,
		Designation: input.Designation,
		Salary:      input.Salary,
		Active:      utils.NewTrue(),
		JoinedAt:    input.JoinedAt,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func UpdateStaff(ctx context.Context, actor Actor, id int, input *NewStaff) (*Staff, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	staff, err := utils.FetchModel[Staff](ctx, id)
	if err != nil {
		return nil, err
	}

	staff.Name = input.Name
	staff.Designation = input.Designation
	staff.Salary = input.Salary
	staff.JoinedAt = input.JoinedAt

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

// DeleteStaff is a soft delete: payment history stays, the staff member
// just drops off the payroll.
func DeleteStaff(ctx context.Context, actor Actor, id int) (*Staff, error) {
	staff, err := utils.FetchModel[Staff](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		desc := fmt.Sprintf("Deactivated staff %s (%s)", staff.Name, staff.Designation)
		if err := LogDelete(ctx, tx, actor, EntityTypeStaff, staff.ID, desc); err != nil {
			return err
		}
		staff.Active = utils.NewFalse()
		return tx.WithContext(ctx).Save(staff).Error
	})
	if err != nil {
		return nil, err
	}
	return staff, nil
}

func GetStaff(ctx context.Context, id int) (*Staff, error) {
	return utils.FetchModel[Staff](ctx, id)
}

// ListStaffs returns active staff by default; includeInactive widens it
// to the full payroll history.
func ListStaffs(ctx context.Context, includeInactive bool) ([]*Staff, error) {
	db := config.GetDB()
	query := db.WithContext(ctx)
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	var staffs []*Staff
	if err := query.Order("name ASC").Find(&staffs).Error; err != nil {
		return nil, err
	}
	return staffs, nil
}
