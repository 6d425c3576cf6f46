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

// Expense is one spent amount on one date. Rows created by staff or
// supplier payments are linked back from the payment's expense_id, so
// editing or deleting an expense has to keep those rows in step.
type Expense struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Category    string          `gorm:"size:50;index;default:General" json:"category"`
	Description string          `gorm:"size:255" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	CreatedById int             `json:"created_by_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewExpense struct {
	Date        time.Time       `json:"date" binding:"required"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	// TemplateName, when set, fills the empty fields from the template.
	TemplateName string `json:"template_name"`
}

// applyTemplate fills blank fields from the named template. A missing
// template is not an error; the raw input stands.
func (input *NewExpense) applyTemplate(ctx context.Context) error {
	if input.TemplateName == "" {
		return nil
	}
	template, err := FindExpenseTemplateByName(ctx, input.TemplateName)
	if err != nil {
		return err
	}
	if template == nil {
		return nil
	}
	if input.Description == "" {
		input.Description = template.DefaultDescription
	}
	if input.Amount.IsZero() {
		input.Amount = template.DefaultAmount
	}
	if input.Category == "" {
		input.Category = template.DefaultCategory
	}
	return nil
}

func CreateExpense(ctx context.Context, actor Actor, input *NewExpense) (*Expense, error) {
	if err := input.applyTemplate(ctx); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New("expense amount must be greater than zero")
	}
	if input.Category == "" {
		input.Category = ExpenseCategoryGeneral
	}

	expense := Expense{
		Date:        utils.DateOnly(input.Date),
		Category:    input.Category,
		Description: input.Description,
		Amount:      input.Amount,
		CreatedById: actor.ID,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

// CreateBulkExpenses writes several rows for one submission in one
// transaction. Rows with a blank description and no template, or a
// non-positive amount after template application, are skipped.
func CreateBulkExpenses(ctx context.Context, actor Actor, inputs []*NewExpense) ([]*Expense, error) {
	db := config.GetDB()
	var created []*Expense
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, input := range inputs {
			if input.Description == "" && input.TemplateName == "" {
				continue
			}
			if err := input.applyTemplate(ctx); err != nil {
				return err
			}
			if !input.Amount.IsPositive() {
				continue
			}
			if input.Category == "" {
				input.Category = ExpenseCategoryGeneral
			}
			expense := &Expense{
				Date:        utils.DateOnly(input.Date),
				Category:    input.Category,
				Description: input.Description,
				Amount:      input.Amount,
				CreatedById: actor.ID,
			}
			if err := tx.WithContext(ctx).Create(expense).Error; err != nil {
				return err
			}
			created = append(created, expense)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateExpense edits the row and propagates the new amount to any
// payment that links back to it, and through the payment to its bank
// entry. The ledger is recalculated when a bank entry changed.
func UpdateExpense(ctx context.Context, actor Actor, id int, input *NewExpense) (*Expense, error) {
	if !input.Amount.IsPositive() {
		return nil, errors.New("expense amount must be greater than zero")
	}
	expense, err := utils.FetchModel[Expense](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = utils.WithLedgerLock(ctx, func() error {
		bankTouched := false
		err := db.Transaction(func(tx *gorm.DB) error {
			expense.Date = utils.DateOnly(input.Date)
			if input.Category != "" {
				expense.Category = input.Category
			}
			expense.Description = input.Description
			expense.Amount = input.Amount
			if err := tx.WithContext(ctx).Save(expense).Error; err != nil {
				return err
			}

			touched, err := propagateExpenseAmount(ctx, tx, expense)
			if err != nil {
				return err
			}
			bankTouched = touched
			if bankTouched {
				return recalcBankBalancesTx(ctx, tx)
			}
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// propagateExpenseAmount pushes the expense amount into linked staff or
// supplier payments and their bank entries. Reports whether a bank
// entry was changed.
func propagateExpenseAmount(ctx context.Context, tx *gorm.DB, expense *Expense) (bool, error) {
	bankTouched := false

	var staffPayments []*StaffPayment
	if err := tx.WithContext(ctx).Where("expense_id = ?", expense.ID).Find(&staffPayments).Error; err != nil {
		return false, err
	}
	for _, payment := range staffPayments {
		payment.Amount = expense.Amount
		payment.Date = expense.Date
		if err := tx.WithContext(ctx).Save(payment).Error; err != nil {
			return false, err
		}
		touched, err := updateLinkedBankEntry(ctx, tx, payment.BankEntryId, expense.Amount, expense.Date)
		if err != nil {
			return false, err
		}
		bankTouched = bankTouched || touched
	}

	var supplierPayments []*SupplierPayment
	if err := tx.WithContext(ctx).Where("expense_id = ?", expense.ID).Find(&supplierPayments).Error; err != nil {
		return false, err
	}
	for _, payment := range supplierPayments {
		payment.Amount = expense.Amount
		payment.Date = expense.Date
		if err := tx.WithContext(ctx).Save(payment).Error; err != nil {
			return false, err
		}
		touched, err := updateLinkedBankEntry(ctx, tx, payment.BankEntryId, expense.Amount, expense.Date)
		if err != nil {
			return false, err
		}
		bankTouched = bankTouched || touched
	}

	return bankTouched, nil
}

// updateLinkedBankEntry rewrites the debit of a linked entry. A missing
// entry is tolerated; the link may already be dangling.
func updateLinkedBankEntry(ctx context.Context, tx *gorm.DB, entryId *int, amount decimal.Decimal, date time.Time) (bool, error) {
	if entryId == nil {
		return false, nil
	}
	var entry BalanceEntry
	err := tx.WithContext(ctx).First(&entry, *entryId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	entry.Debit = amount
	entry.Date = date
	if err := tx.WithContext(ctx).Save(&entry).Error; err != nil {
		return false, err
	}
	return true, nil
}

// DeleteExpense removes the row and every payment that links back to
// it, along with those payments' bank entries. The audit row is written
// in the same transaction, before anything is removed.
func DeleteExpense(ctx context.Context, actor Actor, id int) (*Expense, error) {
	expense, err := utils.FetchModel[Expense](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = utils.WithLedgerLock(ctx, func() error {
		bankTouched := false
		return db.Transaction(func(tx *gorm.DB) error {
			desc := fmt.Sprintf("Deleted expense %s of %s on %s",
				expense.Description, expense.Amount.StringFixed(2), expense.Date.Format(utils.DateLayout))
			if err := LogDelete(ctx, tx, actor, EntityTypeExpense, expense.ID, desc); err != nil {
				return err
			}

			var staffPayments []*StaffPayment
			if err := tx.WithContext(ctx).Where("expense_id = ?", expense.ID).Find(&staffPayments).Error; err != nil {
				return err
			}
			for _, payment := range staffPayments {
				touched, err := deleteLinkedBankEntry(ctx, tx, payment.BankEntryId)
				if err != nil {
					return err
				}
				bankTouched = bankTouched || touched
				if err := tx.WithContext(ctx).Delete(payment).Error; err != nil {
					return err
				}
			}

			var supplierPayments []*SupplierPayment
			if err := tx.WithContext(ctx).Where("expense_id = ?", expense.ID).Find(&supplierPayments).Error; err != nil {
				return err
			}
			for _, payment := range supplierPayments {
				touched, err := deleteLinkedBankEntry(ctx, tx, payment.BankEntryId)
				if err != nil {
					return err
				}
				bankTouched = bankTouched || touched
				if err := tx.WithContext(ctx).Delete(payment).Error; err != nil {
					return err
				}
			}

			if err := tx.WithContext(ctx).Delete(expense).Error; err != nil {
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
	return expense, nil
}

func deleteLinkedBankEntry(ctx context.Context, tx *gorm.DB, entryId *int) (bool, error) {
	if entryId == nil {
		return false, nil
	}
	var entry BalanceEntry
	err := tx.WithContext(ctx).First(&entry, *entryId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := tx.WithContext(ctx).Delete(&entry).Error; err != nil {
		return false, err
	}
	return true, nil
}

func GetExpense(ctx context.Context, id int) (*Expense, error) {
	return utils.FetchModel[Expense](ctx, id)
}

func ListExpenses(ctx context.Context, from time.Time, to time.Time, category string) ([]*Expense, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to))
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var expenses []*Expense
	if err := query.Order("date DESC, id DESC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// ExpenseTotal sums expenses over the (inclusive) range, optionally
// restricted to one category.
func ExpenseTotal(ctx context.Context, from time.Time, to time.Time, category string) (decimal.Decimal, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to))
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var total decimal.NullDecimal
	if err := query.Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

// ExpenseTotalsByCategory groups range totals per category.
func ExpenseTotalsByCategory(ctx context.Context, from time.Time, to time.Time) (map[string]decimal.Decimal, error) {
	db := config.GetDB()
	type row struct {
		Category string
		Total    decimal.Decimal
	}
	var rows []row
	err := db.WithContext(ctx).Model(&Expense{}).
		Select("category, COALESCE(SUM(amount), 0) AS total").
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to)).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		totals[r.Category] = r.Total
	}
	return totals, nil
}
