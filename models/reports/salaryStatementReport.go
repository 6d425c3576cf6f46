package reports

import (
	"context"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/models"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
)

func monthBounds(year int, month int) (time.Time, time.Time) {
	return utils.MonthRange(year, time.Month(month))
}

type SalaryStatementResponse struct {
	StaffId         int                    `json:"staff_id"`
	StaffName       string                 `json:"staff_name"`
	Designation     string                 `json:"designation"`
	Year            int                    `json:"year"`
	Month           int                    `json:"month"`
	EffectiveSalary decimal.Decimal        `json:"effective_salary"`
	Overridden      bool                   `json:"overridden"`
	Paid            decimal.Decimal        `json:"paid"`
	Remaining       decimal.Decimal        `json:"remaining"`
	Payments        []*models.StaffPayment `json:"payments"`
}

// GetSalaryStatement resolves one staff member's position for a month:
// the salary in effect, what has been paid inside that month, and what
// remains.
func GetSalaryStatement(ctx context.Context, staffId int, year int, month int) (*SalaryStatementResponse, error) {
	staff, err := models.GetStaff(ctx, staffId)
	if err != nil {
		return nil, err
	}
	salary, override, err := models.EffectiveSalary(ctx, staffId, year, month)
	if err != nil {
		return nil, err
	}
	paid, err := models.StaffPaidForMonth(ctx, staffId, year, month)
	if err != nil {
		return nil, err
	}

	first, last := monthBounds(year, month)
	payments, err := models.ListStaffPayments(ctx, staffId, first, last)
	if err != nil {
		return nil, err
	}

	return &SalaryStatementResponse{
		StaffId:         staff.ID,
		StaffName:       staff.Name,
		Designation:     staff.Designation,
		Year:            year,
		Month:           month,
		EffectiveSalary: salary,
		Overridden:      override != nil,
		Paid:            paid,
		Remaining:       salary.Sub(paid),
		Payments:        payments,
	}, nil
}

// GetAllSalaryStatements builds the month's payroll sheet across every
// active staff member.
func GetAllSalaryStatements(ctx context.Context, year int, month int) ([]*SalaryStatementResponse, error) {
	staffs, err := models.ListStaffs(ctx, false)
	if err != nil {
		return nil, err
	}

	statements := make([]*SalaryStatementResponse, 0, len(staffs))
	for _, staff := range staffs {
		statement, err := GetSalaryStatement(ctx, staff.ID, year, month)
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}
	return statements, nil
}
