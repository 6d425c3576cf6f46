package reports

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/xuri/excelize/v2"
)

// ExportFinanceReportExcel renders the range report as a spreadsheet:
// one sheet of expenses, one of daily collections, one of doctor bills,
// with a summary block on top of the first sheet.
func ExportFinanceReportExcel(ctx context.Context, from time.Time, to time.Time) (*excelize.File, error) {
	report, err := GetFinanceReport(ctx, from, to, "")
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Summary"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "From")
	f.SetCellValue(sheet, "B1", report.FromDate.Format(utils.DateLayout))
	f.SetCellValue(sheet, "A2", "To")
	f.SetCellValue(sheet, "B2", report.ToDate.Format(utils.DateLayout))
	f.SetCellValue(sheet, "A3", "Total Collection")
	f.SetCellValue(sheet, "B3", report.TotalCollection.StringFixed(2))
	f.SetCellValue(sheet, "A4", "Lab Collection")
	f.SetCellValue(sheet, "B4", report.LabCollection.StringFixed(2))
	f.SetCellValue(sheet, "A5", "Total Expense")
	f.SetCellValue(sheet, "B5", report.TotalExpense.StringFixed(2))
	f.SetCellValue(sheet, "A6", "Total Doctor Bill")
	f.SetCellValue(sheet, "B6", report.TotalDoctorBill.StringFixed(2))
	f.SetCellValue(sheet, "A7", "Net Cash")
	f.SetCellValue(sheet, "B7", report.NetCash.StringFixed(2))

	expenseSheet := "Expenses"
	if _, err := f.NewSheet(expenseSheet); err != nil {
		return nil, err
	}
	f.SetCellValue(expenseSheet, "A1", "Date")
	f.SetCellValue(expenseSheet, "B1", "Category")
	f.SetCellValue(expenseSheet, "C1", "Description")
	f.SetCellValue(expenseSheet, "D1", "Amount")
	for i, e := range report.Expenses {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(expenseSheet, "A"+row, e.Date.Format(utils.DateLayout))
		f.SetCellValue(expenseSheet, "B"+row, e.Category)
		f.SetCellValue(expenseSheet, "C"+row, e.Description)
		f.SetCellValue(expenseSheet, "D"+row, e.Amount.StringFixed(2))
	}

	daySheet := "Collections"
	if _, err := f.NewSheet(daySheet); err != nil {
		return nil, err
	}
	f.SetCellValue(daySheet, "A1", "Date")
	f.SetCellValue(daySheet, "B1", "New")
	f.SetCellValue(daySheet, "C1", "Old")
	f.SetCellValue(daySheet, "D1", "Total")
	for i, d := range report.Days {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(daySheet, "A"+row, d.Date.Format(utils.DateLayout))
		f.SetCellValue(daySheet, "B"+row, d.CollectNew.StringFixed(2))
		f.SetCellValue(daySheet, "C"+row, d.CollectOld.StringFixed(2))
		f.SetCellValue(daySheet, "D"+row, d.TotalCollection.StringFixed(2))
	}

	doctorSheet := "DoctorBills"
	if _, err := f.NewSheet(doctorSheet); err != nil {
		return nil, err
	}
	f.SetCellValue(doctorSheet, "A1", "Date")
	f.SetCellValue(doctorSheet, "B1", "Doctor")
	f.SetCellValue(doctorSheet, "C1", "Modality")
	f.SetCellValue(doctorSheet, "D1", "Amount")
	for i, b := range report.DoctorBills {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(doctorSheet, "A"+row, b.Date.Format(utils.DateLayout))
		f.SetCellValue(doctorSheet, "B"+row, b.DoctorName)
		f.SetCellValue(doctorSheet, "C"+row, b.Modality)
		f.SetCellValue(doctorSheet, "D"+row, b.Amount.StringFixed(2))
	}

	return f, nil
}
