package reports

import (
	"context"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/models"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
)

type BankStatementResponse struct {
	FromDate       time.Time              `json:"from_date"`
	ToDate         time.Time              `json:"to_date"`
	OpeningBalance decimal.Decimal        `json:"opening_balance"`
	TotalCredit    decimal.Decimal        `json:"total_credit"`
	TotalDebit     decimal.Decimal        `json:"total_debit"`
	ClosingBalance decimal.Decimal        `json:"closing_balance"`
	Entries        []*models.BalanceEntry `json:"entries"`
}

// GetBankStatement builds the ledger statement for the (inclusive)
// range. The opening balance covers everything strictly before the
// range; closing = opening + period credits − period debits.
func GetBankStatement(ctx context.Context, from time.Time, to time.Time) (*BankStatementResponse, error) {
	from = utils.DateOnly(from)
	to = utils.DateOnly(to)
	db := config.GetDB()

	var opening struct {
		Balance decimal.Decimal
	}
	err := db.WithContext(ctx).Model(&models.BalanceEntry{}).
		Select("COALESCE(SUM(credit), 0) - COALESCE(SUM(debit), 0) AS balance").
		Where("date < ?", from).
		Scan(&opening).Error
	if err != nil {
		return nil, err
	}

	var entries []*models.BalanceEntry
	err = db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	totalCredit := decimal.Zero
	totalDebit := decimal.Zero
	for _, e := range entries {
		totalCredit = totalCredit.Add(e.Credit)
		totalDebit = totalDebit.Add(e.Debit)
	}

	return &BankStatementResponse{
		FromDate:       from,
		ToDate:         to,
		OpeningBalance: opening.Balance,
		TotalCredit:    totalCredit,
		TotalDebit:     totalDebit,
		ClosingBalance: opening.Balance.Add(totalCredit).Sub(totalDebit),
		Entries:        entries,
	}, nil
}
