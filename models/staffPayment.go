package models

import (
	"context"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
)

// StaffPayment is one salary disbursement. ExpenseId and BankEntryId
// link the rows written alongside it, so edits and deletes can cascade
// in either direction.
type StaffPayment struct {
	ID          int             `gorm:"primary_key" json:"id"`
	StaffId     int             `gorm:"index;not null" json:"staff_id"`
	Staff       *Staff          `json:"staff,omitempty"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Source      PaymentSource   `gorm:"size:10;not null" json:"source"`
	Note        string          `gorm:"size:255" json:"note"`
	ExpenseId   *int            `gorm:"index" json:"expense_id"`
	BankEntryId *int            `gorm:"index" json:"bank_entry_id"`
	CreatedById int             `json:"created_by_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func GetStaffPayment(ctx context.Context, id int) (*StaffPayment, error) {
	return utils.FetchModel[StaffPayment](ctx, id)
}

func ListStaffPayments(ctx context.Context, staffId int, from time.Time, to time.Time) ([]*StaffPayment, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Preload("Staff").
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to))
	if staffId != 0 {
		query = query.Where("staff_id = ?", staffId)
	}
	var payments []*StaffPayment
	if err := query.Order("date DESC, id DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// StaffPaidForMonth sums payments to one staff member inside the
// calendar month, the amount already counted against that month's
// salary.
func StaffPaidForMonth(ctx context.Context, staffId int, year int, month int) (decimal.Decimal, error) {
	first, last := utils.MonthRange(year, time.Month(month))
	db := config.GetDB()
	var total decimal.NullDecimal
	err := db.WithContext(ctx).Model(&StaffPayment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("staff_id = ? AND date >= ? AND date <= ?", staffId, first, last).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

// StaffPaymentTotal sums all salary payments over the range.
func StaffPaymentTotal(ctx context.Context, from time.Time, to time.Time) (decimal.Decimal, error) {
	db := config.GetDB()
	var total decimal.NullDecimal
	err := db.WithContext(ctx).Model(&StaffPayment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to)).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}
