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

// LabCollection is the lab-side daily takings, one row per calendar date.
type LabCollection struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Date        time.Time       `gorm:"uniqueIndex;not null" json:"date"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"amount"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreatedById int             `json:"created_by_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewLabCollection struct {
	Date   time.Time       `json:"date" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

// UpsertLabCollection creates or replaces the lab row for the input's
// date, and makes sure a day summary row exists for that date so range
// reports can join the two sides.
func UpsertLabCollection(ctx context.Context, actor Actor, input *NewLabCollection) (*LabCollection, error) {
	if input.Amount.IsNegative() {
		return nil, errors.New("lab collection amount cannot be negative")
	}
	date := utils.DateOnly(input.Date)

	db := config.GetDB()
	var lab LabCollection
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.WithContext(ctx).Where("date = ?", date).First(&lab).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && !actor.Role.IsAdmin() {
			return errors.New("only admin can modify an existing lab collection for this date")
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			lab = LabCollection{Date: date, CreatedById: actor.ID}
		}
		lab.Amount = input.Amount
		lab.Notes = input.Notes
		lab.CreatedById = actor.ID
		if err := tx.WithContext(ctx).Save(&lab).Error; err != nil {
			return err
		}

		var dayCount int64
		if err := tx.WithContext(ctx).Model(&DaySummary{}).
			Where("date = ?", date).Count(&dayCount).Error; err != nil {
			return err
		}
		if dayCount == 0 {
			day := DaySummary{Date: date, CreatedById: actor.ID}
			day.RecalcTotal()
			if err := tx.WithContext(ctx).Create(&day).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &lab, nil
}

func DeleteLabCollection(ctx context.Context, actor Actor, id int) (*LabCollection, error) {
	lab, err := utils.FetchModel[LabCollection](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		desc := fmt.Sprintf("Deleted lab collection for %s", lab.Date.Format(utils.DateLayout))
		if err := LogDelete(ctx, tx, actor, EntityTypeLabCollection, lab.ID, desc); err != nil {
			return err
		}
		return tx.WithContext(ctx).Delete(lab).Error
	})
	if err != nil {
		return nil, err
	}
	return lab, nil
}

func GetLabCollection(ctx context.Context, id int) (*LabCollection, error) {
	return utils.FetchModel[LabCollection](ctx, id)
}

func ListLabCollections(ctx context.Context, from time.Time, to time.Time) ([]*LabCollection, error) {
	db := config.GetDB()
	var labs []*LabCollection
	err := db.WithContext(ctx).
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to)).
		Order("date DESC").
		Find(&labs).Error
	if err != nil {
		return nil, err
	}
	return labs, nil
}

// LabCollectionTotal sums lab takings over the (inclusive) range.
func LabCollectionTotal(ctx context.Context, from time.Time, to time.Time) (decimal.Decimal, error) {
	db := config.GetDB()
	var total decimal.NullDecimal
	err := db.WithContext(ctx).Model(&LabCollection{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to)).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}
