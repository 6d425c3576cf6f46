package models

import (
	"context"
	"errors"
	"testing"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
)

func day(s string) time.Time {
	t, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRecalcBankBalances_RunningBalance(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	db := config.GetDB()

	entries := []*BalanceEntry{
		{Date: day("2024-01-01"), Description: "Deposit from cash", Credit: decimal.NewFromInt(1000)},
		{Date: day("2024-01-02"), Description: "Withdraw to cash", Debit: decimal.NewFromInt(300)},
		{Date: day("2024-01-03"), Description: "Deposit from cash", Credit: decimal.NewFromInt(200)},
	}
	for _, e := range entries {
		if err := db.Create(e).Error; err != nil {
			t.Fatalf("failed to seed entry: %v", err)
		}
	}

	if err := RecalcBankBalances(ctx); err != nil {
		t.Fatalf("recalc failed: %v", err)
	}

	var got []*BalanceEntry
	if err := db.Order("date ASC, id ASC").Find(&got).Error; err != nil {
		t.Fatalf("failed to load entries: %v", err)
	}
	want := []int64{1000, 700, 900}
	for i, e := range got {
		if !e.BalanceAfter.Equal(decimal.NewFromInt(want[i])) {
			t.Errorf("entry %d: balance_after = %s, want %d", i, e.BalanceAfter, want[i])
		}
	}
}

func TestRecalcBankBalances_Idempotent(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	db := config.GetDB()

	for i := 0; i < 5; i++ {
		e := &BalanceEntry{Date: day("2024-02-01").AddDate(0, 0, i), Credit: decimal.NewFromInt(int64(100 * (i + 1)))}
		if err := db.Create(e).Error; err != nil {
			t.Fatalf("failed to seed entry: %v", err)
		}
	}

	if err := RecalcBankBalances(ctx); err != nil {
		t.Fatalf("first recalc failed: %v", err)
	}
	var first []*BalanceEntry
	if err := db.Order("date ASC, id ASC").Find(&first).Error; err != nil {
		t.Fatal(err)
	}

	if err := RecalcBankBalances(ctx); err != nil {
		t.Fatalf("second recalc failed: %v", err)
	}
	var second []*BalanceEntry
	if err := db.Order("date ASC, id ASC").Find(&second).Error; err != nil {
		t.Fatal(err)
	}

	for i := range first {
		if !first[i].BalanceAfter.Equal(second[i].BalanceAfter) {
			t.Errorf("entry %d changed between recalcs: %s vs %s", i, first[i].BalanceAfter, second[i].BalanceAfter)
		}
	}
}

func TestCreateBankTransaction_WithdrawChecksBalance(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()

	if _, err := CreateBankTransaction(ctx, actor, &NewBankTransaction{
		Type: BankTransactionTypeDeposit, Date: day("2024-03-01"), Amount: decimal.NewFromInt(500),
	}); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}

	_, err := CreateBankTransaction(ctx, actor, &NewBankTransaction{
		Type: BankTransactionTypeWithdraw, Date: day("2024-03-02"), Amount: decimal.NewFromInt(600),
	})
	if !errors.Is(err, utils.ErrorInsufficientFunds) {
		t.Fatalf("expected insufficient funds error, got %v", err)
	}

	if _, err := CreateBankTransaction(ctx, actor, &NewBankTransaction{
		Type: BankTransactionTypeWithdraw, Date: day("2024-03-02"), Amount: decimal.NewFromInt(500),
	}); err != nil {
		t.Fatalf("withdraw of full balance failed: %v", err)
	}

	balance, err := BankBalance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !balance.IsZero() {
		t.Errorf("balance = %s, want 0", balance)
	}
}

func TestDeleteBalanceEntry_RecalcAndAudit(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()
	db := config.GetDB()

	first, err := CreateBankTransaction(ctx, actor, &NewBankTransaction{
		Type: BankTransactionTypeDeposit, Date: day("2024-04-01"), Amount: decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CreateBankTransaction(ctx, actor, &NewBankTransaction{
		Type: BankTransactionTypeDeposit, Date: day("2024-04-02"), Amount: decimal.NewFromInt(400),
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := DeleteBalanceEntry(ctx, actor, first.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var remaining []*BalanceEntry
	if err := db.Order("date ASC, id ASC").Find(&remaining).Error; err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 entry left, got %d", len(remaining))
	}
	if !remaining[0].BalanceAfter.Equal(decimal.NewFromInt(400)) {
		t.Errorf("balance_after = %s, want 400 after recalc", remaining[0].BalanceAfter)
	}

	var logs []*DeleteLog
	if err := db.Where("entity_type = ?", EntityTypeBankEntry).Find(&logs).Error; err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(logs))
	}
	if logs[0].UserId != actor.ID || logs[0].Username != actor.Username {
		t.Errorf("audit row actor = (%d, %q), want (%d, %q)", logs[0].UserId, logs[0].Username, actor.ID, actor.Username)
	}
}
