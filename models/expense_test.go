package models

import (
	"context"
	"testing"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"github.com/shopspring/decimal"
)

func TestCreateExpense_TemplateApplication(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()

	if _, err := CreateExpenseTemplate(ctx, actor, &NewExpenseTemplate{
		Name:               "Electricity",
		DefaultDescription: "Monthly electricity bill",
		DefaultAmount:      decimal.NewFromInt(1200),
		DefaultCategory:    "Utilities",
	}); err != nil {
		t.Fatalf("failed to create template: %v", err)
	}

	expense, err := CreateExpense(ctx, actor, &NewExpense{
		Date:         day("2024-05-01"),
		TemplateName: "Electricity",
	})
	if err != nil {
		t.Fatalf("create with template failed: %v", err)
	}
	if expense.Description != "Monthly electricity bill" {
		t.Errorf("description = %q, want template default", expense.Description)
	}
	if !expense.Amount.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("amount = %s, want 1200", expense.Amount)
	}
	if expense.Category != "Utilities" {
		t.Errorf("category = %q, want Utilities", expense.Category)
	}

	// Explicit fields win over the template.
	expense, err = CreateExpense(ctx, actor, &NewExpense{
		Date:         day("2024-05-02"),
		TemplateName: "Electricity",
		Description:  "Partial bill",
		Amount:       decimal.NewFromInt(600),
	})
	if err != nil {
		t.Fatal(err)
	}
	if expense.Description != "Partial bill" || !expense.Amount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("explicit fields overridden: %q %s", expense.Description, expense.Amount)
	}
}

func TestCreateExpense_DefaultsToGeneral(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	expense, err := CreateExpense(ctx, testActor(), &NewExpense{
		Date: day("2024-05-03"), Description: "Stationery", Amount: decimal.NewFromInt(150),
	})
	if err != nil {
		t.Fatal(err)
	}
	if expense.Category != ExpenseCategoryGeneral {
		t.Errorf("category = %q, want %q", expense.Category, ExpenseCategoryGeneral)
	}
}

func TestCreateBulkExpenses_SkipsBlankRows(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	created, err := CreateBulkExpenses(ctx, testActor(), []*NewExpense{
		{Date: day("2024-05-04"), Description: "Gloves", Amount: decimal.NewFromInt(200)},
		{Date: day("2024-05-04")},
		{Date: day("2024-05-04"), Description: "Zero row", Amount: decimal.Zero},
		{Date: day("2024-05-04"), Description: "Reagents", Amount: decimal.NewFromInt(800)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 rows created, got %d", len(created))
	}
}

func TestDeleteExpense_CascadesToPaymentAndBankEntry(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()
	db := config.GetDB()

	entry := &BalanceEntry{Date: day("2024-06-01"), Credit: decimal.NewFromInt(5000)}
	if err := db.Create(entry).Error; err != nil {
		t.Fatal(err)
	}
	debit := &BalanceEntry{Date: day("2024-06-02"), Debit: decimal.NewFromInt(1000), Description: "Salary paid to Rahima from bank"}
	if err := db.Create(debit).Error; err != nil {
		t.Fatal(err)
	}
	expense := &Expense{Date: day("2024-06-02"), Category: ExpenseCategorySalary, Description: "Salary for Rahima", Amount: decimal.NewFromInt(1000)}
	if err := db.Create(expense).Error; err != nil {
		t.Fatal(err)
	}
	staff := &Staff{Name: "Rahima", Salary: decimal.NewFromInt(4000)}
	if err := db.Create(staff).Error; err != nil {
		t.Fatal(err)
	}
	payment := &StaffPayment{
		StaffId: staff.ID, Date: day("2024-06-02"), Amount: decimal.NewFromInt(1000),
		Source: PaymentSourceBank, ExpenseId: &expense.ID, BankEntryId: &debit.ID,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatal(err)
	}

	if _, err := DeleteExpense(ctx, actor, expense.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var paymentCount, entryCount int64
	db.Model(&StaffPayment{}).Where("id = ?", payment.ID).Count(&paymentCount)
	db.Model(&BalanceEntry{}).Where("id = ?", debit.ID).Count(&entryCount)
	if paymentCount != 0 {
		t.Error("linked staff payment survived expense delete")
	}
	if entryCount != 0 {
		t.Error("linked bank entry survived expense delete")
	}

	balance, err := BankBalance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !balance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("balance = %s, want 5000 after cascade", balance)
	}
}
