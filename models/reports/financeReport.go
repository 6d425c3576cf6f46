package reports

import (
	"context"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/models"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
)

type CategoryBreakdown struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type DoctorBreakdown struct {
	DoctorName string          `json:"doctor_name"`
	Total      decimal.Decimal `json:"total"`
}

type FinanceReportResponse struct {
	FromDate          time.Time               `json:"from_date"`
	ToDate            time.Time               `json:"to_date"`
	TotalCollection   decimal.Decimal         `json:"total_collection"`
	LabCollection     decimal.Decimal         `json:"lab_collection"`
	TotalExpense      decimal.Decimal         `json:"total_expense"`
	TotalDoctorBill   decimal.Decimal         `json:"total_doctor_bill"`
	NetCash           decimal.Decimal         `json:"net_cash"`
	Days              []*models.DaySummary    `json:"days"`
	Expenses          []*models.Expense       `json:"expenses"`
	ExpenseCategories []CategoryBreakdown     `json:"expense_categories"`
	DoctorBills       []*models.DoctorBill    `json:"doctor_bills"`
	Doctors           []DoctorBreakdown       `json:"doctors"`
}

// GetFinanceReport is the range report behind the reports screen:
// collections (clinic + lab), the expense list with a per-category
// breakdown, doctor bills with a per-doctor breakdown, and the net cash
// movement for the period. category narrows the expense list when set.
func GetFinanceReport(ctx context.Context, from time.Time, to time.Time, category string) (*FinanceReportResponse, error) {
	from = utils.DateOnly(from)
	to = utils.DateOnly(to)

	days, err := models.ListDaySummaries(ctx, from, to)
	if err != nil {
		return nil, err
	}
	lab, err := models.LabCollectionTotal(ctx, from, to)
	if err != nil {
		return nil, err
	}
	totalCollection, err := collectionTotal(ctx, from, to)
	if err != nil {
		return nil, err
	}

	expenses, err := models.ListExpenses(ctx, from, to, category)
	if err != nil {
		return nil, err
	}
	totalExpense, err := models.ExpenseTotal(ctx, from, to, "")
	if err != nil {
		return nil, err
	}
	byCategory, err := models.ExpenseTotalsByCategory(ctx, from, to)
	if err != nil {
		return nil, err
	}
	categories := make([]CategoryBreakdown, 0, len(byCategory))
	for name, total := range byCategory {
		categories = append(categories, CategoryBreakdown{Category: name, Total: total})
	}

	doctorBills, err := models.ListDoctorBills(ctx, from, to)
	if err != nil {
		return nil, err
	}
	totalDoctorBill, err := models.DoctorBillTotal(ctx, from, to)
	if err != nil {
		return nil, err
	}
	doctors, err := doctorTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &FinanceReportResponse{
		FromDate:          from,
		ToDate:            to,
		TotalCollection:   totalCollection,
		LabCollection:     lab,
		TotalExpense:      totalExpense,
		TotalDoctorBill:   totalDoctorBill,
		NetCash:           totalCollection.Sub(totalExpense).Sub(totalDoctorBill),
		Days:              days,
		Expenses:          expenses,
		ExpenseCategories: categories,
		DoctorBills:       doctorBills,
		Doctors:           doctors,
	}, nil
}

func doctorTotals(ctx context.Context, from time.Time, to time.Time) ([]DoctorBreakdown, error) {
	db := config.GetDB()
	var rows []DoctorBreakdown
	err := db.WithContext(ctx).Model(&models.DoctorBill{}).
		Select("doctor_name, COALESCE(SUM(amount), 0) AS total").
		Where("date >= ? AND date <= ?", from, to).
		Group("doctor_name").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
