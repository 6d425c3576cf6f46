package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DaySummary is the daily patient-collection total, one row per calendar
// date. TotalCollection is derived from the two collection buckets.
type DaySummary struct {
	ID              int             `gorm:"primary_key" json:"id"`
	Date            time.Time       `gorm:"uniqueIndex;not null" json:"date"`
	CollectNew      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"collect_new"`
	CollectOld      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"collect_old"`
	TotalCollection decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total_collection"`
	CashInHand      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"cash_in_hand"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedById     int             `json:"created_by_id"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewDaySummary struct {
	Date       time.Time       `json:"date" binding:"required"`
	CollectNew decimal.Decimal `json:"collect_new"`
	CollectOld decimal.Decimal `json:"collect_old"`
	CashInHand decimal.Decimal `json:"cash_in_hand"`
	Notes      string          `json:"notes"`
}

func (d *DaySummary) RecalcTotal() {
	d.TotalCollection = d.CollectNew.Add(d.CollectOld)
}

// UpsertDaySummary creates or updates the summary for the input's date.
// Only admins may modify a date that already has a row.
func UpsertDaySummary(ctx context.Context, actor Actor, input *NewDaySummary) (*DaySummary, error) {
	if input.CollectNew.IsNegative() || input.CollectOld.IsNegative() {
		return nil, errors.New("collection amounts cannot be negative")
	}
	date := utils.DateOnly(input.Date)

	db := config.GetDB()
	var existing DaySummary
	err := db.WithContext(ctx).Where("date = ?", date).First(&existing).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if found && !actor.Role.IsAdmin() {
		return nil, errors.New("only admin can modify an existing day summary for this date")
	}

	day := &existing
	if !found {
		day = &DaySummary{Date: date, CreatedById: actor.ID}
	}
	day.CollectNew = input.CollectNew
	day.CollectOld = input.CollectOld
	day.CashInHand = input.CashInHand
	day.Notes = input.Notes
	day.CreatedById = actor.ID
	day.RecalcTotal()

	if err := db.WithContext(ctx).Save(day).Error; err != nil {
		return nil, err
	}
	return day, nil
}

func DeleteDaySummary(ctx context.Context, actor Actor, id int) (*DaySummary, error) {
	day, err := utils.FetchModel[DaySummary](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		desc := fmt.Sprintf("Deleted day summary for %s", day.Date.Format(utils.DateLayout))
		if err := LogDelete(ctx, tx, actor, EntityTypeDay, day.ID, desc); err != nil {
			return err
		}
		return tx.WithContext(ctx).Delete(day).Error
	})
	if err != nil {
		return nil, err
	}
	return day, nil
}

func GetDaySummary(ctx context.Context, id int) (*DaySummary, error) {
	return utils.FetchModel[DaySummary](ctx, id)
}

// ListDaySummaries returns day rows within the range, newest first.
func ListDaySummaries(ctx context.Context, from time.Time, to time.Time) ([]*DaySummary, error) {
	db := config.GetDB()
	var days []*DaySummary
	err := db.WithContext(ctx).
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to)).
		Order("date DESC").
		Find(&days).Error
	if err != nil {
		return nil, err
	}
	return days, nil
}
