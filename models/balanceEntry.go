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

// BalanceEntry is one row of the bank ledger. BalanceAfter is a cached
// prefix sum maintained by RecalcBankBalances; it is never trusted for
// balance checks, which always re-derive from credit/debit sums.
type BalanceEntry struct {
	ID           int             `gorm:"primary_key" json:"id"`
	Date         time.Time       `gorm:"index;not null" json:"date"`
	Description  string          `gorm:"size:255" json:"description"`
	Credit       decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"credit"`
	Debit        decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"debit"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"balance_after"`
	CreatedById  int             `json:"created_by_id"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type BankTransactionType string

const (
	BankTransactionTypeDeposit  BankTransactionType = "deposit"
	BankTransactionTypeWithdraw BankTransactionType = "withdraw"
)

type NewBankTransaction struct {
	Type        BankTransactionType `json:"type" binding:"required"`
	Date        time.Time           `json:"date"`
	Amount      decimal.Decimal     `json:"amount"`
	Description string              `json:"description"`
}

// RecalcBankBalances recomputes BalanceAfter for every ledger row in
// (date, id) order and persists all rows in one transaction. Idempotent:
// a second call with no intervening mutation writes the same values.
func RecalcBankBalances(ctx context.Context) error {
	db := config.GetDB()
	return utils.WithLedgerLock(ctx, func() error {
		return recalcBankBalancesTx(ctx, db)
	})
}

// RecalcBankBalancesTx is the transaction-scoped form for callers that
// already hold the ledger lock and a transaction.
func RecalcBankBalancesTx(ctx context.Context, tx *gorm.DB) error {
	return recalcBankBalancesTx(ctx, tx)
}

func recalcBankBalancesTx(ctx context.Context, db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var entries []*BalanceEntry
		if err := tx.WithContext(ctx).
			Order("date ASC, id ASC").
			Find(&entries).Error; err != nil {
			return err
		}

		running := decimal.Zero
		for _, e := range entries {
			running = running.Add(e.Credit).Sub(e.Debit)
			if !e.BalanceAfter.Equal(running) {
				if err := tx.WithContext(ctx).Model(e).
					Update("balance_after", running).Error; err != nil {
					return err
				}
			}
			e.BalanceAfter = running
		}
		return nil
	})
}

// BankBalance is the authoritative current balance: sum of credits minus
// sum of debits over the whole ledger, ignoring the cached column.
func BankBalance(ctx context.Context) (decimal.Decimal, error) {
	db := config.GetDB()
	return bankBalanceTx(ctx, db)
}

// BankBalanceTx computes the balance inside the caller's transaction.
func BankBalanceTx(ctx context.Context, tx *gorm.DB) (decimal.Decimal, error) {
	return bankBalanceTx(ctx, tx)
}

func bankBalanceTx(ctx context.Context, tx *gorm.DB) (decimal.Decimal, error) {
	var result struct {
		Balance decimal.Decimal
	}
	err := tx.WithContext(ctx).Model(&BalanceEntry{}).
		Select("COALESCE(SUM(credit), 0) - COALESCE(SUM(debit), 0) AS balance").
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Balance, nil
}

// BankBalanceAsOf bounds the balance by date (inclusive) for statements.
func BankBalanceAsOf(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	db := config.GetDB()
	var result struct {
		Balance decimal.Decimal
	}
	err := db.WithContext(ctx).Model(&BalanceEntry{}).
		Select("COALESCE(SUM(credit), 0) - COALESCE(SUM(debit), 0) AS balance").
		Where("date <= ?", utils.DateOnly(asOf)).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Balance, nil
}

// CreateBankTransaction records a deposit or withdrawal and refreshes the
// running balances. Withdrawals are rejected when they exceed the current
// balance.
func CreateBankTransaction(ctx context.Context, actor Actor, input *NewBankTransaction) (*BalanceEntry, error) {
	if !input.Amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}

	txDate := input.Date
	if txDate.IsZero() {
		txDate = time.Now()
	}
	txDate = utils.DateOnly(txDate)

	entry := BalanceEntry{
		Date:        txDate,
		CreatedById: actor.ID,
	}

	switch input.Type {
	case BankTransactionTypeDeposit:
		entry.Credit = input.Amount
		entry.Description = input.Description
		if entry.Description == "" {
			entry.Description = "Deposit from cash"
		}
	case BankTransactionTypeWithdraw:
		current, err := BankBalance(ctx)
		if err != nil {
			return nil, err
		}
		if input.Amount.GreaterThan(current) {
			return nil, utils.ErrorInsufficientFunds
		}
		entry.Debit = input.Amount
		entry.Description = input.Description
		if entry.Description == "" {
			entry.Description = "Withdraw to cash"
		}
	default:
		return nil, errors.New("invalid transaction type")
	}

	db := config.GetDB()
	err := utils.WithLedgerLock(ctx, func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
				return err
			}
			return recalcBankBalancesTx(ctx, tx)
		})
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteBalanceEntry removes a ledger row directly (not via a payment),
// writes the audit record, and refreshes running balances.
func DeleteBalanceEntry(ctx context.Context, actor Actor, id int) (*BalanceEntry, error) {
	entry, err := utils.FetchModel[BalanceEntry](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = utils.WithLedgerLock(ctx, func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			desc := fmt.Sprintf("Deleted bank entry '%s' credit=%s debit=%s",
				entry.Description, entry.Credit.String(), entry.Debit.String())
			if err := LogDelete(ctx, tx, actor, EntityTypeBankEntry, entry.ID, desc); err != nil {
				return err
			}
			if err := tx.WithContext(ctx).Delete(entry).Error; err != nil {
				return err
			}
			return recalcBankBalancesTx(ctx, tx)
		})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func GetBalanceEntry(ctx context.Context, id int) (*BalanceEntry, error) {
	return utils.FetchModel[BalanceEntry](ctx, id)
}

// ListBalanceEntries returns the ledger newest first for display.
func ListBalanceEntries(ctx context.Context) ([]*BalanceEntry, error) {
	db := config.GetDB()
	var entries []*BalanceEntry
	err := db.WithContext(ctx).
		Order("date DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
