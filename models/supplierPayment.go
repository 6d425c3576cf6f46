package models

import (
	"context"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
)

// SupplierPayment is one settlement against a supplier's dues, linked
// to its expense row and, for bank payments, its ledger entry.
type SupplierPayment struct {
	ID          int             `gorm:"primary_key" json:"id"`
	SupplierId  int             `gorm:"index;not null" json:"supplier_id"`
	Supplier    *Supplier       `json:"supplier,omitempty"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Source      PaymentSource   `gorm:"size:10;not null" json:"source"`
	Note        string          `gorm:"size:255" json:"note"`
	ExpenseId   *int            `gorm:"index" json:"expense_id"`
	BankEntryId *int            `gorm:"index" json:"bank_entry_id"`
	CreatedById int             `json:"created_by_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func GetSupplierPayment(ctx context.Context, id int) (*SupplierPayment, error) {
	return utils.FetchModel[SupplierPayment](ctx, id)
}

func ListSupplierPayments(ctx context.Context, supplierId int, from time.Time, to time.Time) ([]*SupplierPayment, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Preload("Supplier").
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to))
	if supplierId != 0 {
		query = query.Where("supplier_id = ?", supplierId)
	}
	var payments []*SupplierPayment
	if err := query.Order("date DESC, id DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// SupplierPaidTotal sums payments to one supplier up to (and including)
// the given date; a zero time means all payments.
func SupplierPaidTotal(ctx context.Context, supplierId int, until time.Time) (decimal.Decimal, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&SupplierPayment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("supplier_id = ?", supplierId)
	if !until.IsZero() {
		query = query.Where("date <= ?", utils.DateOnly(until))
	}
	var total decimal.NullDecimal
	if err := query.Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

// SupplierPaymentTotal sums all supplier payments over the range.
func SupplierPaymentTotal(ctx context.Context, from time.Time, to time.Time) (decimal.Decimal, error) {
	db := config.GetDB()
	var total decimal.NullDecimal
	err := db.WithContext(ctx).Model(&SupplierPayment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to)).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}
