package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StaffMonthlySalary overrides the base salary from its (year, month)
// onward, until a later override takes over.
type StaffMonthlySalary struct {
	ID        int             `gorm:"primary_key" json:"id"`
	StaffId   int             `gorm:"uniqueIndex:idx_staff_year_month;not null" json:"staff_id"`
	Year      int             `gorm:"uniqueIndex:idx_staff_year_month;not null" json:"year"`
	Month     int             `gorm:"uniqueIndex:idx_staff_year_month;not null" json:"month"`
	Salary    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"salary"`
	Note      string          `gorm:"size:255" json:"note"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewStaffMonthlySalary struct {
	StaffId int             `json:"staff_id" binding:"required"`
	Year    int             `json:"year" binding:"required"`
	Month   int             `json:"month" binding:"required"`
	Salary  decimal.Decimal `json:"salary"`
	Note    string          `json:"note"`
}

func (input *NewStaffMonthlySalary) validate() error {
	if input.Month < 1 || input.Month > 12 {
		return errors.New("month must be between 1 and 12")
	}
	if input.Year < 2000 || input.Year > 2200 {
		return errors.New("year is out of range")
	}
	if input.Salary.IsNegative() {
		return errors.New("salary cannot be negative")
	}
	return nil
}

// EffectiveSalary resolves the salary in effect for (year, month): the
// override with the greatest (year, month) at or before the target, or
// the base salary when no override is that old. The matched override is
// returned alongside, nil when the base applied.
func EffectiveSalary(ctx context.Context, staffId int, year int, month int) (decimal.Decimal, *StaffMonthlySalary, error) {
	staff, err := utils.FetchModel[Staff](ctx, staffId)
	if err != nil {
		return decimal.Zero, nil, err
	}

	db := config.GetDB()
	var override StaffMonthlySalary
	err = db.WithContext(ctx).
		Where("staff_id = ? AND (year < ? OR (year = ? AND month <= ?))", staffId, year, year, month).
		Order("year DESC, month DESC").
		First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return staff.Salary, nil, nil
	}
	if err != nil {
		return decimal.Zero, nil, err
	}
	return override.Salary, &override, nil
}

// SetMonthlySalary upserts the override for (staff, year, month).
func SetMonthlySalary(ctx context.Context, actor Actor, input *NewStaffMonthlySalary) (*StaffMonthlySalary, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Staff](ctx, input.StaffId); err != nil {
		return nil, errors.New("staff not found")
	}

	db := config.GetDB()
	var override StaffMonthlySalary
	err := db.WithContext(ctx).
		Where("staff_id = ? AND year = ? AND month = ?", input.StaffId, input.Year, input.Month).
		First(&override).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		override = StaffMonthlySalary{
			StaffId: input.StaffId,
			Year:    input.Year,
			Month:   input.Month,
		}
	}
	override.Salary = input.Salary
	override.Note = input.Note

	if err := db.WithContext(ctx).Save(&override).Error; err != nil {
		return nil, err
	}
	return &override, nil
}

// ResetMonthlySalary removes the override for that exact month, so the
// previous override (or the base salary) applies again.
func ResetMonthlySalary(ctx context.Context, actor Actor, staffId int, year int, month int) error {
	db := config.GetDB()
	var override StaffMonthlySalary
	err := db.WithContext(ctx).
		Where("staff_id = ? AND year = ? AND month = ?", staffId, year, month).
		First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorRecordNotFound
	}
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(&override).Error
}

func ListMonthlySalaries(ctx context.Context, staffId int) ([]*StaffMonthlySalary, error) {
	db := config.GetDB()
	var overrides []*StaffMonthlySalary
	err := db.WithContext(ctx).
		Where("staff_id = ?", staffId).
		Order("year DESC, month DESC").
		Find(&overrides).Error
	if err != nil {
		return nil, err
	}
	return overrides, nil
}
