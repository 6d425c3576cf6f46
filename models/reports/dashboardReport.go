package reports

import (
	"context"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/models"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
)

type DashboardResponse struct {
	TodayCollection decimal.Decimal `json:"today_collection"`
	MonthCollection decimal.Decimal `json:"month_collection"`
	MonthExpense    decimal.Decimal `json:"month_expense"`
	MonthDoctorBill decimal.Decimal `json:"month_doctor_bill"`
	BankBalance     decimal.Decimal `json:"bank_balance"`
	CashInHand      decimal.Decimal `json:"cash_in_hand"`
}

// collectionTotal sums day totals plus lab takings over the range. A
// zero from means all time.
func collectionTotal(ctx context.Context, from time.Time, to time.Time) (decimal.Decimal, error) {
	db := config.GetDB()
	dayQuery := db.WithContext(ctx).Model(&models.DaySummary{}).
		Select("COALESCE(SUM(total_collection), 0)")
	labQuery := db.WithContext(ctx).Model(&models.LabCollection{}).
		Select("COALESCE(SUM(amount), 0)")
	if !from.IsZero() {
		dayQuery = dayQuery.Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to))
		labQuery = labQuery.Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to))
	}

	var days, lab decimal.NullDecimal
	if err := dayQuery.Scan(&days).Error; err != nil {
		return decimal.Zero, err
	}
	if err := labQuery.Scan(&lab).Error; err != nil {
		return decimal.Zero, err
	}
	return days.Decimal.Add(lab.Decimal), nil
}

// CashInHand is what's physically in the drawer: everything ever
// collected, minus everything spent, minus doctor bills, minus what was
// moved to (and stays in) the bank.
func CashInHand(ctx context.Context) (decimal.Decimal, error) {
	collections, err := collectionTotal(ctx, time.Time{}, time.Time{})
	if err != nil {
		return decimal.Zero, err
	}

	db := config.GetDB()
	var expenses decimal.NullDecimal
	err = db.WithContext(ctx).Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&expenses).Error
	if err != nil {
		return decimal.Zero, err
	}

	var doctorBills decimal.NullDecimal
	err = db.WithContext(ctx).Model(&models.DoctorBill{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&doctorBills).Error
	if err != nil {
		return decimal.Zero, err
	}

	bank, err := models.BankBalance(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return collections.Sub(expenses.Decimal).Sub(doctorBills.Decimal).Sub(bank), nil
}

func GetDashboard(ctx context.Context) (*DashboardResponse, error) {
	today := utils.DateOnly(time.Now())
	monthFirst, monthLast := utils.ThisMonthRange()

	todayCollection, err := collectionTotal(ctx, today, today)
	if err != nil {
		return nil, err
	}
	monthCollection, err := collectionTotal(ctx, monthFirst, monthLast)
	if err != nil {
		return nil, err
	}
	monthExpense, err := models.ExpenseTotal(ctx, monthFirst, monthLast, "")
	if err != nil {
		return nil, err
	}
	monthDoctorBill, err := models.DoctorBillTotal(ctx, monthFirst, monthLast)
	if err != nil {
		return nil, err
	}
	bank, err := models.BankBalance(ctx)
	if err != nil {
		return nil, err
	}
	cashInHand, err := CashInHand(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		TodayCollection: todayCollection,
		MonthCollection: monthCollection,
		MonthExpense:    monthExpense,
		MonthDoctorBill: monthDoctorBill,
		BankBalance:     bank,
		CashInHand:      cashInHand,
	}, nil
}
