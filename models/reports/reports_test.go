package reports

import (
	"context"
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

func TestCashInHand(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()

	if _, err := models.UpsertDaySummary(ctx, actor, &models.NewDaySummary{
		Date: day("2024-02-01"), CollectNew: decimal.NewFromInt(6000), CollectOld: decimal.NewFromInt(4000),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := models.UpsertLabCollection(ctx, actor, &models.NewLabCollection{
		Date: day("2024-02-01"), Amount: decimal.NewFromInt(2000),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := models.CreateExpense(ctx, actor, &models.NewExpense{
		Date: day("2024-02-02"), Description: "Reagents", Amount: decimal.NewFromInt(3000),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := models.CreateDoctorBill(ctx, actor, &models.NewDoctorBill{
		DoctorName: "Dr. Akter", Date: day("2024-02-03"), Amount: decimal.NewFromInt(1000),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := models.CreateBankTransaction(ctx, actor, &models.NewBankTransaction{
		Type: models.BankTransactionTypeDeposit, Date: day("2024-02-04"), Amount: decimal.NewFromInt(2000),
	}); err != nil {
		t.Fatal(err)
	}

	// 12000 collected − 3000 expenses − 1000 doctor bills − 2000 in bank.
	cash, err := CashInHand(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !cash.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("cash in hand = %s, want 6000", cash)
	}
}

func TestGetBankStatement_OpeningAndClosing(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()

	deposits := []struct {
		date   string
		amount int64
	}{
		{"2024-01-10", 5000},
		{"2024-02-05", 1000},
		{"2024-02-20", 2000},
	}
	for _, d := range deposits {
		if _, err := models.CreateBankTransaction(ctx, actor, &models.NewBankTransaction{
			Type: models.BankTransactionTypeDeposit, Date: day(d.date), Amount: decimal.NewFromInt(d.amount),
		}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := models.CreateBankTransaction(ctx, actor, &models.NewBankTransaction{
		Type: models.BankTransactionTypeWithdraw, Date: day("2024-02-10"), Amount: decimal.NewFromInt(500),
	}); err != nil {
		t.Fatal(err)
	}

	statement, err := GetBankStatement(ctx, day("2024-02-01"), day("2024-02-28"))
	if err != nil {
		t.Fatal(err)
	}
	if !statement.OpeningBalance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("opening = %s, want 5000", statement.OpeningBalance)
	}
	if !statement.TotalCredit.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("credits = %s, want 3000", statement.TotalCredit)
	}
	if !statement.TotalDebit.Equal(decimal.NewFromInt(500)) {
		t.Errorf("debits = %s, want 500", statement.TotalDebit)
	}
	if !statement.ClosingBalance.Equal(decimal.NewFromInt(7500)) {
		t.Errorf("closing = %s, want 7500", statement.ClosingBalance)
	}
	if len(statement.Entries) != 3 {
		t.Errorf("entries = %d, want 3", len(statement.Entries))
	}
}

func TestGetSupplierStatement_OpeningAndClosing(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()

	supplier, err := models.CreateSupplier(ctx, actor, &models.NewSupplier{Name: "LabChem"})
	if err != nil {
		t.Fatal(err)
	}

	// Before the range: 2000 billed, nothing paid.
	if _, err := models.CreateSupplierBill(ctx, actor, &models.NewSupplierBill{
		SupplierId: supplier.ID, Date: day("2024-01-05"), Amount: decimal.NewFromInt(2000),
	}); err != nil {
		t.Fatal(err)
	}
	// Inside the range: 7000 billed, 1000 paid.
	if _, err := models.CreateSupplierBill(ctx, actor, &models.NewSupplierBill{
		SupplierId: supplier.ID, Date: day("2024-02-10"), Amount: decimal.NewFromInt(7000),
	}); err != nil {
		t.Fatal(err)
	}
	payment := &models.SupplierPayment{
		SupplierId: supplier.ID, Date: day("2024-02-15"), Amount: decimal.NewFromInt(1000),
		Source: models.PaymentSourceCash,
	}
	if err := config.GetDB().Create(payment).Error; err != nil {
		t.Fatal(err)
	}

	statement, err := GetSupplierStatement(ctx, supplier.ID, day("2024-02-01"), day("2024-02-28"))
	if err != nil {
		t.Fatal(err)
	}
	if !statement.OpeningDue.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("opening due = %s, want 2000", statement.OpeningDue)
	}
	if !statement.ClosingDue.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("closing due = %s, want 8000", statement.ClosingDue)
	}
}

func TestGetSalaryStatement(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()

	staff, err := models.CreateStaff(ctx, actor, &models.NewStaff{
		Name: "Nasrin", Salary: decimal.NewFromInt(4000),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := models.SetMonthlySalary(ctx, actor, &models.NewStaffMonthlySalary{
		StaffId: staff.ID, Year: 2024, Month: 3, Salary: decimal.NewFromInt(5000),
	}); err != nil {
		t.Fatal(err)
	}
	payment := &models.StaffPayment{
		StaffId: staff.ID, Date: day("2024-03-10"), Amount: decimal.NewFromInt(1500),
		Source: models.PaymentSourceCash,
	}
	if err := config.GetDB().Create(payment).Error; err != nil {
		t.Fatal(err)
	}

	statement, err := GetSalaryStatement(ctx, staff.ID, 2024, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !statement.EffectiveSalary.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("effective salary = %s, want 5000", statement.EffectiveSalary)
	}
	if !statement.Overridden {
		t.Error("expected overridden = true")
	}
	if !statement.Paid.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("paid = %s, want 1500", statement.Paid)
	}
	if !statement.Remaining.Equal(decimal.NewFromInt(3500)) {
		t.Errorf("remaining = %s, want 3500", statement.Remaining)
	}
}
