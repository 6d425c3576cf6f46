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

// SupplierBill is one purchase on credit from a supplier.
type SupplierBill struct {
	ID          int             `gorm:"primary_key" json:"id"`
	SupplierId  int             `gorm:"index;not null" json:"supplier_id"`
	Supplier    *Supplier       `json:"supplier,omitempty"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Description string          `gorm:"size:255" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	CreatedById int             `json:"created_by_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewSupplierBill struct {
	SupplierId  int             `json:"supplier_id" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// CreateSupplierBill writes the bill and the supplier's new total due
// in one transaction.
func CreateSupplierBill(ctx context.Context, actor Actor, input *NewSupplierBill) (*SupplierBill, error) {
	if !input.Amount.IsPositive() {
		return nil, errors.New("bill amount must be greater than zero")
	}
	if err := utils.ValidateResourceId[Supplier](ctx, input.SupplierId); err != nil {
		return nil, errors.New("supplier not found")
	}

	bill := SupplierBill{
		SupplierId:  input.SupplierId,
		Date:        utils.DateOnly(input.Date),
		Description: input.Description,
		Amount:      input.Amount,
		CreatedById: actor.ID,
	}

	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Create(&bill).Error; err != nil {
			return err
		}
		return recalcSupplierTotalDueTx(ctx, tx, bill.SupplierId)
	})
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// DeleteSupplierBill removes the bill and recomputes the supplier's
// total due in the same transaction.
func DeleteSupplierBill(ctx context.Context, actor Actor, id int) (*SupplierBill, error) {
	bill, err := utils.FetchModel[SupplierBill](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		desc := fmt.Sprintf("Deleted supplier bill of %s on %s",
			bill.Amount.StringFixed(2), bill.Date.Format(utils.DateLayout))
		if err := LogDelete(ctx, tx, actor, EntityTypeSupplierBill, bill.ID, desc); err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Delete(bill).Error; err != nil {
			return err
		}
		return recalcSupplierTotalDueTx(ctx, tx, bill.SupplierId)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

func GetSupplierBill(ctx context.Context, id int) (*SupplierBill, error) {
	return utils.FetchModel[SupplierBill](ctx, id)
}

func ListSupplierBills(ctx context.Context, supplierId int, from time.Time, to time.Time) ([]*SupplierBill, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to))
	if supplierId != 0 {
		query = query.Where("supplier_id = ?", supplierId)
	}
	var bills []*SupplierBill
	if err := query.Order("date DESC, id DESC").Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// SupplierBillTotal sums bills for one supplier up to (and including)
// the given date; a zero time means all bills.
func SupplierBillTotal(ctx context.Context, supplierId int, until time.Time) (decimal.Decimal, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&SupplierBill{}).
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
