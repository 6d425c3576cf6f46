package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/models"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	config.SetDB(db)
	models.MigrateTable()
}

func testActor() models.Actor {
	return models.Actor{ID: 1, Username: "tester", Role: models.UserRoleAdmin}
}

func day(s string) time.Time {
	t, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedBank(t *testing.T, amount int64, date string) {
	t.Helper()
	if _, err := models.CreateBankTransaction(context.Background(), testActor(), &models.NewBankTransaction{
		Type: models.BankTransactionTypeDeposit, Date: day(date), Amount: decimal.NewFromInt(amount),
	}); err != nil {
		t.Fatalf("failed to seed bank: %v", err)
	}
}

func seedStaff(t *testing.T, salary int64) *models.Staff {
	t.Helper()
	staff, err := models.CreateStaff(context.Background(), testActor(), &models.NewStaff{
		Name: "Karim", Designation: "Receptionist", Salary: decimal.NewFromInt(salary),
	})
	if err != nil {
		t.Fatalf("failed to seed staff: %v", err)
	}
	return staff
}

func seedSupplierWithBill(t *testing.T, billAmount int64, date string) *models.Supplier {
	t.Helper()
	ctx := context.Background()
	supplier, err := models.CreateSupplier(ctx, testActor(), &models.NewSupplier{Name: "MediSupply"})
	if err != nil {
		t.Fatalf("failed to seed supplier: %v", err)
	}
	if billAmount > 0 {
		if _, err := models.CreateSupplierBill(ctx, testActor(), &models.NewSupplierBill{
			SupplierId: supplier.ID, Date: day(date), Amount: decimal.NewFromInt(billAmount),
		}); err != nil {
			t.Fatalf("failed to seed bill: %v", err)
		}
	}
	return supplier
}

func TestRecordStaffPayment_BankRoundTrip(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()
	db := config.GetDB()

	seedBank(t, 10000, "2024-07-01")
	staff := seedStaff(t, 5000)

	payment, err := RecordStaffPayment(ctx, actor, &NewPayment{
		StaffId: staff.ID, Date: day("2024-07-05"), Amount: decimal.NewFromInt(1000),
		Source: models.PaymentSourceBank,
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if payment.ExpenseId == nil || payment.BankEntryId == nil {
		t.Fatal("payment missing linked expense or bank entry")
	}

	var expense models.Expense
	if err := db.First(&expense, *payment.ExpenseId).Error; err != nil {
		t.Fatalf("linked expense missing: %v", err)
	}
	if expense.Category != models.ExpenseCategorySalary {
		t.Errorf("expense category = %q, want %q", expense.Category, models.ExpenseCategorySalary)
	}
	var entry models.BalanceEntry
	if err := db.First(&entry, *payment.BankEntryId).Error; err != nil {
		t.Fatalf("linked bank entry missing: %v", err)
	}
	if entry.Description != "Salary paid to Karim from bank" {
		t.Errorf("entry description = %q", entry.Description)
	}
	if !entry.Debit.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("entry debit = %s, want 1000", entry.Debit)
	}

	// Update propagates to both linked rows.
	if _, err := UpdateStaffPayment(ctx, actor, payment.ID, &UpdatePayment{
		Date: day("2024-07-06"), Amount: decimal.NewFromInt(1500),
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := db.First(&expense, *payment.ExpenseId).Error; err != nil {
		t.Fatal(err)
	}
	if !expense.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expense amount = %s, want 1500 after update", expense.Amount)
	}
	if err := db.First(&entry, *payment.BankEntryId).Error; err != nil {
		t.Fatal(err)
	}
	if !entry.Debit.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("entry debit = %s, want 1500 after update", entry.Debit)
	}

	balance, err := models.BankBalance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !balance.Equal(decimal.NewFromInt(8500)) {
		t.Errorf("balance = %s, want 8500", balance)
	}
}

func TestRecordStaffPayment_OverpaymentRule(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()

	staff := seedStaff(t, 5000)

	// 4800 of the 5000 salary already paid this month.
	if _, err := RecordStaffPayment(ctx, actor, &NewPayment{
		StaffId: staff.ID, Date: day("2024-08-01"), Amount: decimal.NewFromInt(4800),
		Source: models.PaymentSourceCash,
	}); err != nil {
		t.Fatalf("first payment failed: %v", err)
	}

	_, err := RecordStaffPayment(ctx, actor, &NewPayment{
		StaffId: staff.ID, Date: day("2024-08-15"), Amount: decimal.NewFromInt(300),
		Source: models.PaymentSourceCash,
	})
	if !errors.Is(err, utils.ErrorOverpayment) {
		t.Fatalf("expected overpayment error for 300, got %v", err)
	}

	if _, err := RecordStaffPayment(ctx, actor, &NewPayment{
		StaffId: staff.ID, Date: day("2024-08-15"), Amount: decimal.NewFromInt(200),
		Source: models.PaymentSourceCash,
	}); err != nil {
		t.Fatalf("exact remaining payment rejected: %v", err)
	}
}

func TestRecordStaffPayment_InsufficientFunds(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	seedBank(t, 500, "2024-09-01")
	staff := seedStaff(t, 5000)

	_, err := RecordStaffPayment(ctx, testActor(), &NewPayment{
		StaffId: staff.ID, Date: day("2024-09-05"), Amount: decimal.NewFromInt(1000),
		Source: models.PaymentSourceBank,
	})
	if !errors.Is(err, utils.ErrorInsufficientFunds) {
		t.Fatalf("expected insufficient funds error, got %v", err)
	}

	// The failed attempt must leave no partial rows behind.
	db := config.GetDB()
	var expenseCount, paymentCount int64
	db.Model(&models.Expense{}).Count(&expenseCount)
	db.Model(&models.StaffPayment{}).Count(&paymentCount)
	if expenseCount != 0 || paymentCount != 0 {
		t.Errorf("partial rows left behind: expenses=%d payments=%d", expenseCount, paymentCount)
	}
}

func TestDeleteStaffPayment_CascadesToLinks(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()
	db := config.GetDB()

	seedBank(t, 10000, "2024-10-01")
	staff := seedStaff(t, 5000)

	payment, err := RecordStaffPayment(ctx, actor, &NewPayment{
		StaffId: staff.ID, Date: day("2024-10-05"), Amount: decimal.NewFromInt(2000),
		Source: models.PaymentSourceBank,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DeleteStaffPayment(ctx, actor, payment.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var expenseCount, entryCount int64
	db.Model(&models.Expense{}).Where("id = ?", *payment.ExpenseId).Count(&expenseCount)
	db.Model(&models.BalanceEntry{}).Where("id = ?", *payment.BankEntryId).Count(&entryCount)
	if expenseCount != 0 {
		t.Error("linked expense survived payment delete")
	}
	if entryCount != 0 {
		t.Error("linked bank entry survived payment delete")
	}

	balance, err := models.BankBalance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !balance.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("balance = %s, want 10000 restored", balance)
	}

	var logs []*models.DeleteLog
	if err := db.Where("entity_type = ?", models.EntityTypeStaffPayment).Find(&logs).Error; err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Errorf("expected 1 audit row, got %d", len(logs))
	}
}

func TestRecordSupplierPayment_RemainingDue(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()

	supplier := seedSupplierWithBill(t, 5000, "2024-11-01")

	if _, err := RecordSupplierPayment(ctx, actor, &NewPayment{
		SupplierId: supplier.ID, Date: day("2024-11-10"), Amount: decimal.NewFromInt(3000),
		Source: models.PaymentSourceCash,
	}); err != nil {
		t.Fatalf("first payment failed: %v", err)
	}

	_, err := RecordSupplierPayment(ctx, actor, &NewPayment{
		SupplierId: supplier.ID, Date: day("2024-11-20"), Amount: decimal.NewFromInt(2500),
		Source: models.PaymentSourceCash,
	})
	if !errors.Is(err, utils.ErrorOverpayment) {
		t.Fatalf("expected overpayment error, got %v", err)
	}

	if _, err := RecordSupplierPayment(ctx, actor, &NewPayment{
		SupplierId: supplier.ID, Date: day("2024-11-20"), Amount: decimal.NewFromInt(2000),
		Source: models.PaymentSourceCash,
	}); err != nil {
		t.Fatalf("exact remaining payment rejected: %v", err)
	}
}

func TestRecordSupplierPayment_NoObligationAllowed(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	// No bills at all: any amount goes through.
	supplier := seedSupplierWithBill(t, 0, "")

	if _, err := RecordSupplierPayment(ctx, testActor(), &NewPayment{
		SupplierId: supplier.ID, Date: day("2024-11-25"), Amount: decimal.NewFromInt(700),
		Source: models.PaymentSourceCash,
	}); err != nil {
		t.Fatalf("zero-obligation payment rejected: %v", err)
	}
}
