package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/models"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NewPayment is the shared input for staff and supplier payments.
// StaffId or SupplierId selects the payee.
type NewPayment struct {
	StaffId    int                  `json:"staff_id"`
	SupplierId int                  `json:"supplier_id"`
	Date       time.Time            `json:"date" binding:"required"`
	Amount     decimal.Decimal      `json:"amount" binding:"required"`
	Source     models.PaymentSource `json:"source" binding:"required,paymentsource"`
	Note       string               `json:"note"`
}

func (input *NewPayment) validate() error {
	if !input.Amount.IsPositive() {
		return errors.New("payment amount must be greater than zero")
	}
	if !input.Source.Valid() {
		return errors.New("payment source must be cash or bank")
	}
	return nil
}

// checkRemaining enforces the overpayment rule shared by both payment
// kinds: with a non-zero obligation that is not already overpaid, a
// payment may not exceed what remains.
func checkRemaining(obligation decimal.Decimal, paid decimal.Decimal, amount decimal.Decimal) error {
	remaining := obligation.Sub(paid)
	if !obligation.IsZero() && remaining.GreaterThanOrEqual(decimal.Zero) && amount.GreaterThan(remaining) {
		return utils.ErrorOverpayment
	}
	return nil
}

// checkBankFunds rejects a bank payment larger than the current balance.
func checkBankFunds(ctx context.Context, tx *gorm.DB, amount decimal.Decimal) error {
	balance, err := models.BankBalanceTx(ctx, tx)
	if err != nil {
		return err
	}
	if amount.GreaterThan(balance) {
		return utils.ErrorInsufficientFunds
	}
	return nil
}

// RecordStaffPayment pays a staff member's salary for the payment's
// month. The amount is checked against the effective salary minus what
// was already paid that month. A linked expense row is always written;
// a bank-sourced payment also writes a ledger debit.
func RecordStaffPayment(ctx context.Context, actor models.Actor, input *NewPayment) (*models.StaffPayment, error) {
	logger := config.GetLogger()
	if err := input.validate(); err != nil {
		return nil, err
	}

	staff, err := models.GetStaff(ctx, input.StaffId)
	if err != nil {
		return nil, errors.New("staff not found")
	}

	date := utils.DateOnly(input.Date)
	salary, _, err := models.EffectiveSalary(ctx, staff.ID, date.Year(), int(date.Month()))
	if err != nil {
		return nil, err
	}
	paid, err := models.StaffPaidForMonth(ctx, staff.ID, date.Year(), int(date.Month()))
	if err != nil {
		return nil, err
	}
	if err := checkRemaining(salary, paid, input.Amount); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var payment *models.StaffPayment
	err = utils.WithLedgerLock(ctx, func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			description := input.Note
			if description == "" {
				description = fmt.Sprintf("Salary for %s", staff.Name)
			}
			expense := models.Expense{
				Date:        date,
				Category:    models.ExpenseCategorySalary,
				Description: description,
				Amount:      input.Amount,
				CreatedById: actor.ID,
			}
			if err := tx.WithContext(ctx).Create(&expense).Error; err != nil {
				return err
			}

			var bankEntryId *int
			if input.Source == models.PaymentSourceBank {
				if err := checkBankFunds(ctx, tx, input.Amount); err != nil {
					return err
				}
				entry := models.BalanceEntry{
					Date:        date,
					Description: fmt.Sprintf("Salary paid to %s from bank", staff.Name),
					Debit:       input.Amount,
					CreatedById: actor.ID,
				}
				if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
					return err
				}
				bankEntryId = &entry.ID
			}

			payment = &models.StaffPayment{
				StaffId:     staff.ID,
				Date:        date,
				Amount:      input.Amount,
				Source:      input.Source,
				Note:        input.Note,
				ExpenseId:   &expense.ID,
				BankEntryId: bankEntryId,
				CreatedById: actor.ID,
			}
			if err := tx.WithContext(ctx).Create(payment).Error; err != nil {
				return err
			}

			if bankEntryId != nil {
				return models.RecalcBankBalancesTx(ctx, tx)
			}
			return nil
		})
	})
	if err != nil {
		config.LogError(logger, "workflow", "RecordStaffPayment", "staff payment", input, err)
		return nil, err
	}
	return payment, nil
}

// RecordSupplierPayment settles part of a supplier's dues. The amount is
// checked against total bills minus total payments to date.
func RecordSupplierPayment(ctx context.Context, actor models.Actor, input *NewPayment) (*models.SupplierPayment, error) {
	logger := config.GetLogger()
	if err := input.validate(); err != nil {
		return nil, err
	}

	supplier, err := models.GetSupplier(ctx, input.SupplierId)
	if err != nil {
		return nil, errors.New("supplier not found")
	}

	billed, err := models.SupplierBillTotal(ctx, supplier.ID, time.Time{})
	if err != nil {
		return nil, err
	}
	paid, err := models.SupplierPaidTotal(ctx, supplier.ID, time.Time{})
	if err != nil {
		return nil, err
	}
	if err := checkRemaining(billed, paid, input.Amount); err != nil {
		return nil, err
	}

	date := utils.DateOnly(input.Date)
	db := config.GetDB()
	var payment *models.SupplierPayment
	err = utils.WithLedgerLock(ctx, func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			description := input.Note
			if description == "" {
				description = fmt.Sprintf("Payment to supplier %s", supplier.Name)
			}
			expense := models.Expense{
				Date:        date,
				Category:    models.ExpenseCategorySupplier,
				Description: description,
				Amount:      input.Amount,
				CreatedById: actor.ID,
			}
			if err := tx.WithContext(ctx).Create(&expense).Error; err != nil {
				return err
			}

			var bankEntryId *int
			if input.Source == models.PaymentSourceBank {
				if err := checkBankFunds(ctx, tx, input.Amount); err != nil {
					return err
				}
				entry := models.BalanceEntry{
					Date:        date,
					Description: fmt.Sprintf("Payment to supplier %s from bank", supplier.Name),
					Debit:       input.Amount,
					CreatedById: actor.ID,
				}
				if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
					return err
				}
				bankEntryId = &entry.ID
			}

			payment = &models.SupplierPayment{
				SupplierId:  supplier.ID,
				Date:        date,
				Amount:      input.Amount,
				Source:      input.Source,
				Note:        input.Note,
				ExpenseId:   &expense.ID,
				BankEntryId: bankEntryId,
				CreatedById: actor.ID,
			}
			if err := tx.WithContext(ctx).Create(payment).Error; err != nil {
				return err
			}

			if bankEntryId != nil {
				return models.RecalcBankBalancesTx(ctx, tx)
			}
			return nil
		})
	})
	if err != nil {
		config.LogError(logger, "workflow", "RecordSupplierPayment", "supplier payment", input, err)
		return nil, err
	}
	return payment, nil
}

// UpdatePayment carries the editable fields of an existing payment.
type UpdatePayment struct {
	Date   time.Time       `json:"date" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note"`
}

// UpdateStaffPayment edits the amount, date and note of a payment and
// pushes the change through its linked expense and ledger entry.
// Already-missing linked rows are tolerated.
func UpdateStaffPayment(ctx context.Context, actor models.Actor, id int, input *UpdatePayment) (*models.StaffPayment, error) {
	if !input.Amount.IsPositive() {
		return nil, errors.New("payment amount must be greater than zero")
	}
	payment, err := models.GetStaffPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	staff, err := models.GetStaff(ctx, payment.StaffId)
	if err != nil {
		return nil, errors.New("staff not found")
	}

	date := utils.DateOnly(input.Date)
	db := config.GetDB()
	err = utils.WithLedgerLock(ctx, func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			payment.Date = date
			payment.Amount = input.Amount
			payment.Note = input.Note
			if err := tx.WithContext(ctx).Save(payment).Error; err != nil {
				return err
			}

			description := input.Note
			if description == "" {
				description = fmt.Sprintf("Salary for %s", staff.Name)
			}
			if err := updateLinkedExpense(ctx, tx, payment.ExpenseId, date, input.Amount, description); err != nil {
				return err
			}

			touched, err := updateLinkedEntry(ctx, tx, payment.BankEntryId, date, input.Amount,
				fmt.Sprintf("Salary paid to %s from bank", staff.Name))
			if err != nil {
				return err
			}
			if touched {
				return models.RecalcBankBalancesTx(ctx, tx)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// UpdateSupplierPayment mirrors UpdateStaffPayment for supplier dues.
func UpdateSupplierPayment(ctx context.Context, actor models.Actor, id int, input *UpdatePayment) (*models.SupplierPayment, error) {
	if !input.Amount.IsPositive() {
		return nil, errors.New("payment amount must be greater than zero")
	}
	payment, err := models.GetSupplierPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier, err := models.GetSupplier(ctx, payment.SupplierId)
	if err != nil {
		return nil, errors.New("supplier not found")
	}

	date := utils.DateOnly(input.Date)
	db := config.GetDB()
	err = utils.WithLedgerLock(ctx, func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			payment.Date = date
			payment.Amount = input.Amount
			payment.Note = input.Note
			if err := tx.WithContext(ctx).Save(payment).Error; err != nil {
				return err
			}

			description := input.Note
			if description == "" {
				description = fmt.Sprintf("Payment to supplier %s", supplier.Name)
			}
			if err := updateLinkedExpense(ctx, tx, payment.ExpenseId, date, input.Amount, description); err != nil {
				return err
			}

			touched, err := updateLinkedEntry(ctx, tx, payment.BankEntryId, date, input.Amount,
				fmt.Sprintf("Payment to supplier %s from bank", supplier.Name))
			if err != nil {
				return err
			}
			if touched {
				return models.RecalcBankBalancesTx(ctx, tx)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// DeleteStaffPayment removes the payment and its linked expense and
// ledger entry. The audit row goes in first, same transaction.
func DeleteStaffPayment(ctx context.Context, actor models.Actor, id int) (*models.StaffPayment, error) {
	payment, err := models.GetStaffPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = utils.WithLedgerLock(ctx, func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			desc := fmt.Sprintf("Deleted staff payment of %s on %s",
				payment.Amount.StringFixed(2), payment.Date.Format(utils.DateLayout))
			if err := models.LogDelete(ctx, tx, actor, models.EntityTypeStaffPayment, payment.ID, desc); err != nil {
				return err
			}
			return deletePaymentLinks(ctx, tx, payment.ExpenseId, payment.BankEntryId, payment)
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// DeleteSupplierPayment mirrors DeleteStaffPayment.
func DeleteSupplierPayment(ctx context.Context, actor models.Actor, id int) (*models.SupplierPayment, error) {
	payment, err := models.GetSupplierPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = utils.WithLedgerLock(ctx, func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			desc := fmt.Sprintf("Deleted supplier payment of %s on %s",
				payment.Amount.StringFixed(2), payment.Date.Format(utils.DateLayout))
			if err := models.LogDelete(ctx, tx, actor, models.EntityTypeSupplierPayment, payment.ID, desc); err != nil {
				return err
			}
			return deletePaymentLinks(ctx, tx, payment.ExpenseId, payment.BankEntryId, payment)
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// updateLinkedExpense rewrites a payment's expense row; a dangling link
// is skipped.
func updateLinkedExpense(ctx context.Context, tx *gorm.DB, expenseId *int, date time.Time, amount decimal.Decimal, description string) error {
	if expenseId == nil {
		return nil
	}
	var expense models.Expense
	err := tx.WithContext(ctx).First(&expense, *expenseId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	expense.Date = date
	expense.Amount = amount
	expense.Description = description
	return tx.WithContext(ctx).Save(&expense).Error
}

// updateLinkedEntry rewrites a payment's ledger debit; reports whether
// the ledger was actually touched.
func updateLinkedEntry(ctx context.Context, tx *gorm.DB, entryId *int, date time.Time, amount decimal.Decimal, description string) (bool, error) {
	if entryId == nil {
		return false, nil
	}
	var entry models.BalanceEntry
	err := tx.WithContext(ctx).First(&entry, *entryId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	entry.Date = date
	entry.Debit = amount
	entry.Description = description
	if err := tx.WithContext(ctx).Save(&entry).Error; err != nil {
		return false, err
	}
	return true, nil
}

// deletePaymentLinks removes the payment row plus whatever linked rows
// still exist, then recalculates if the ledger lost an entry.
func deletePaymentLinks(ctx context.Context, tx *gorm.DB, expenseId *int, entryId *int, payment any) error {
	if expenseId != nil {
		if err := tx.WithContext(ctx).
			Where("id = ?", *expenseId).
			Delete(&models.Expense{}).Error; err != nil {
			return err
		}
	}
	bankTouched := false
	if entryId != nil {
		var entry models.BalanceEntry
		err := tx.WithContext(ctx).First(&entry, *entryId).Error
		if err == nil {
			if err := tx.WithContext(ctx).Delete(&entry).Error; err != nil {
				return err
			}
			bankTouched = true
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	if err := tx.WithContext(ctx).Delete(payment).Error; err != nil {
		return err
	}
	if bankTouched {
		return models.RecalcBankBalancesTx(ctx, tx)
	}
	return nil
}
