package models

import (
	"context"
	"testing"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"github.com/shopspring/decimal"
)

func TestUpsertDaySummary_OneRowPerDate(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()
	actor := testActor()

	first, err := UpsertDaySummary(ctx, actor, &NewDaySummary{
		Date: day("2024-01-15"), CollectNew: decimal.NewFromInt(3000), CollectOld: decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !first.TotalCollection.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("total = %s, want 5000", first.TotalCollection)
	}

	second, err := UpsertDaySummary(ctx, actor, &NewDaySummary{
		Date: day("2024-01-15"), CollectNew: decimal.NewFromInt(4000), CollectOld: decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("second upsert created a new row: %d vs %d", second.ID, first.ID)
	}
	if !second.TotalCollection.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("total = %s, want 5000", second.TotalCollection)
	}

	var count int64
	config.GetDB().Model(&DaySummary{}).Count(&count)
	if count != 1 {
		t.Errorf("day rows = %d, want 1", count)
	}
}

func TestUpsertDaySummary_EmployeeCannotModifyExisting(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	if _, err := UpsertDaySummary(ctx, testActor(), &NewDaySummary{
		Date: day("2024-01-16"), CollectNew: decimal.NewFromInt(100),
	}); err != nil {
		t.Fatal(err)
	}

	employee := Actor{ID: 2, Username: "junior", Role: UserRoleEmployee}
	if _, err := UpsertDaySummary(ctx, employee, &NewDaySummary{
		Date: day("2024-01-16"), CollectNew: decimal.NewFromInt(999),
	}); err == nil {
		t.Error("expected error when employee modifies an existing day")
	}

	// Fresh date is fine for anyone.
	if _, err := UpsertDaySummary(ctx, employee, &NewDaySummary{
		Date: day("2024-01-17"), CollectNew: decimal.NewFromInt(50),
	}); err != nil {
		t.Errorf("employee could not create a new day: %v", err)
	}
}

func TestUpsertLabCollection_EnsuresDayRow(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	if _, err := UpsertLabCollection(ctx, testActor(), &NewLabCollection{
		Date: day("2024-01-20"), Amount: decimal.NewFromInt(800),
	}); err != nil {
		t.Fatal(err)
	}

	var dayCount int64
	config.GetDB().Model(&DaySummary{}).Where("date = ?", day("2024-01-20")).Count(&dayCount)
	if dayCount != 1 {
		t.Errorf("day rows for date = %d, want 1", dayCount)
	}
}
