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

// Supplier is a vendor the clinic buys from. TotalDue caches the sum of
// its bills and is recomputed whenever a bill is added or removed.
type Supplier struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:120;not null" json:"name"`
	Details   string          `gorm:"size:255" json:"details"`
	TotalDue  decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_due"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewSupplier struct {
	Name    string `json:"name" binding:"required"`
	Details string `json:"details"`
}

func CreateSupplier(ctx context.Context, actor Actor, input *NewSupplier) (*Supplier, error) {
	if input.Name == "" {
		return nil, errors.New("supplier name is required")
	}

	supplier := Supplier{Name: input.Name, Details: input.Details}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, actor Actor, id int, input *NewSupplier) (*Supplier, error) {
	if input.Name == "" {
		return nil, errors.New("supplier name is required")
	}
	supplier, err := utils.FetchModel[Supplier](ctx, id)
	if err != nil {
		return nil, err
	}

	supplier.Name = input.Name
	supplier.Details = input.Details

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

// recalcSupplierTotalDueTx rewrites the cached bill total inside the
// caller's transaction.
func recalcSupplierTotalDueTx(ctx context.Context, tx *gorm.DB, supplierId int) error {
	var total decimal.NullDecimal
	err := tx.WithContext(ctx).Model(&SupplierBill{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("supplier_id = ?", supplierId).
		Scan(&total).Error
	if err != nil {
		return err
	}
	return tx.WithContext(ctx).Model(&Supplier{}).
		Where("id = ?", supplierId).
		Update("total_due", total.Decimal).Error
}

// DeleteSupplier hard-deletes the supplier and everything hanging off
// it: bills, payments, the payments' linked expenses and bank entries.
// The ledger is recalculated when a bank entry was removed.
func DeleteSupplier(ctx context.Context, actor Actor, id int) (*Supplier, error) {
	supplier, err := utils.FetchModel[Supplier](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = utils.WithLedgerLock(ctx, func() error {
		bankTouched := false
		return db.Transaction(func(tx *gorm.DB) error {
			desc := fmt.Sprintf("Deleted supplier %s with all bills and payments", supplier.Name)
			if err := LogDelete(ctx, tx, actor, EntityTypeSupplier, supplier.ID, desc); err != nil {
				return err
			}

			var payments []*SupplierPayment
			if err := tx.WithContext(ctx).Where("supplier_id = ?", supplier.ID).Find(&payments).Error; err != nil {
				return err
			}
			for _, payment := range payments {
				touched, err := deleteLinkedBankEntry(ctx, tx, payment.BankEntryId)
				if err != nil {
					return err
				}
				bankTouched = bankTouched || touched
				if payment.ExpenseId != nil {
					if err := tx.WithContext(ctx).
						Where("id = ?", *payment.ExpenseId).
						Delete(&Expense{}).Error; err != nil {
						return err
					}
				}
				if err := tx.WithContext(ctx).Delete(payment).Error; err != nil {
					return err
				}
			}

			if err := tx.WithContext(ctx).
				Where("supplier_id = ?", supplier.ID).
				Delete(&SupplierBill{}).Error; err != nil {
				return err
			}
			if err := tx.WithContext(ctx).Delete(supplier).Error; err != nil {
				return err
			}
			if bankTouched {
				return recalcBankBalancesTx(ctx, tx)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return utils.FetchModel[Supplier](ctx, id)
}

func ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	db := config.GetDB()
	var suppliers []*Supplier
	if err := db.WithContext(ctx).Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}
