package models

import (
	"context"
	"testing"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"github.com/shopspring/decimal"
)

func TestSupplierBill_TotalDueCache(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()

	supplier, err := CreateSupplier(ctx, actor, &NewSupplier{Name: "PharmaDist"})
	if err != nil {
		t.Fatal(err)
	}

	bill, err := CreateSupplierBill(ctx, actor, &NewSupplierBill{
		SupplierId: supplier.ID, Date: day("2024-03-01"), Amount: decimal.NewFromInt(3000),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CreateSupplierBill(ctx, actor, &NewSupplierBill{
		SupplierId: supplier.ID, Date: day("2024-03-10"), Amount: decimal.NewFromInt(2000),
	}); err != nil {
		t.Fatal(err)
	}

	got, err := GetSupplier(ctx, supplier.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.TotalDue.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("total_due = %s, want 5000", got.TotalDue)
	}

	if _, err := DeleteSupplierBill(ctx, actor, bill.ID); err != nil {
		t.Fatal(err)
	}
	got, err = GetSupplier(ctx, supplier.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.TotalDue.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("total_due = %s, want 2000 after bill delete", got.TotalDue)
	}
}

func TestDeleteSupplier_HardCascade(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()
	db := config.GetDB()

	supplier, err := CreateSupplier(ctx, actor, &NewSupplier{Name: "SurgiTrade"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CreateSupplierBill(ctx, actor, &NewSupplierBill{
		SupplierId: supplier.ID, Date: day("2024-04-01"), Amount: decimal.NewFromInt(4000),
	}); err != nil {
		t.Fatal(err)
	}

	// Bank-sourced payment with its linked rows.
	entry := &BalanceEntry{Date: day("2024-04-05"), Credit: decimal.NewFromInt(6000)}
	if err := db.Create(entry).Error; err != nil {
		t.Fatal(err)
	}
	debit := &BalanceEntry{Date: day("2024-04-06"), Debit: decimal.NewFromInt(1000), Description: "Payment to supplier SurgiTrade from bank"}
	if err := db.Create(debit).Error; err != nil {
		t.Fatal(err)
	}
	expense := &Expense{Date: day("2024-04-06"), Category: ExpenseCategorySupplier, Description: "Payment to supplier SurgiTrade", Amount: decimal.NewFromInt(1000)}
	if err := db.Create(expense).Error; err != nil {
		t.Fatal(err)
	}
	payment := &SupplierPayment{
		SupplierId: supplier.ID, Date: day("2024-04-06"), Amount: decimal.NewFromInt(1000),
		Source: PaymentSourceBank, ExpenseId: &expense.ID, BankEntryId: &debit.ID,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatal(err)
	}

	if _, err := DeleteSupplier(ctx, actor, supplier.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var bills, payments, expenses, entries int64
	db.Model(&SupplierBill{}).Where("supplier_id = ?", supplier.ID).Count(&bills)
	db.Model(&SupplierPayment{}).Where("supplier_id = ?", supplier.ID).Count(&payments)
	db.Model(&Expense{}).Where("id = ?", expense.ID).Count(&expenses)
	db.Model(&BalanceEntry{}).Where("id = ?", debit.ID).Count(&entries)
	if bills != 0 || payments != 0 || expenses != 0 || entries != 0 {
		t.Errorf("cascade incomplete: bills=%d payments=%d expenses=%d entries=%d", bills, payments, expenses, entries)
	}

	balance, err := BankBalance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !balance.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("balance = %s, want 6000 after cascade", balance)
	}

	var logs []*DeleteLog
	if err := db.Where("entity_type = ?", EntityTypeSupplier).Find(&logs).Error; err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Errorf("expected 1 audit row, got %d", len(logs))
	}
}

func TestDeleteStaff_SoftDelete(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()

	staff, err := CreateStaff(ctx, actor, &NewStaff{Name: "Jamal", Salary: decimal.NewFromInt(3000)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DeleteStaff(ctx, actor, staff.ID); err != nil {
		t.Fatal(err)
	}

	got, err := GetStaff(ctx, staff.ID)
	if err != nil {
		t.Fatalf("soft-deleted staff should still load: %v", err)
	}
	if got.Active == nil || *got.Active {
		t.Error("staff still active after delete")
	}

	active, err := ListStaffs(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Errorf("active staff = %d, want 0", len(active))
	}
	all, err := ListStaffs(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("all staff = %d, want 1", len(all))
	}
}
