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

// DoctorBill is a referral fee paid out in cash to a visiting doctor.
type DoctorBill struct {
	ID          int             `gorm:"primary_key" json:"id"`
	DoctorName  string          `gorm:"size:120;index;not null" json:"doctor_name"`
	Modality    string          `gorm:"size:80" json:"modality"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Notes       string          `gorm:"size:255" json:"notes"`
	CreatedById int             `json:"created_by_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewDoctorBill struct {
	DoctorName string          `json:"doctor_name" binding:"required"`
	Modality   string          `json:"modality"`
	Date       time.Time       `json:"date" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Notes      string          `json:"notes"`
}

func (input *NewDoctorBill) validate() error {
	if input.DoctorName == "" {
		return errors.New("doctor name is required")
	}
	if !input.Amount.IsPositive() {
		return errors.New("doctor bill amount must be greater than zero")
	}
	return nil
}

func CreateDoctorBill(ctx context.Context, actor Actor, input *NewDoctorBill) (*DoctorBill, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	bill := DoctorBill{
		DoctorName:  input.DoctorName,
		Modality:    input.Modality,
		Date:        utils.DateOnly(input.Date),
		Amount:      input.Amount,
		Notes:       input.Notes,
		CreatedById: actor.ID,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&bill).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func UpdateDoctorBill(ctx context.Context, actor Actor, id int, input *NewDoctorBill) (*DoctorBill, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	bill, err := utils.FetchModel[DoctorBill](ctx, id)
	if err != nil {
		return nil, err
	}

	bill.DoctorName = input.DoctorName
	bill.Modality = input.Modality
	bill.Date = utils.DateOnly(input.Date)
	bill.Amount = input.Amount
	bill.Notes = input.Notes

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(bill).Error; err != nil {
		return nil, err
	}
	return bill, nil
}

func DeleteDoctorBill(ctx context.Context, actor Actor, id int) (*DoctorBill, error) {
	bill, err := utils.FetchModel[DoctorBill](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		desc := fmt.Sprintf("Deleted doctor bill of %s for %s on %s",
			bill.Amount.StringFixed(2), bill.DoctorName, bill.Date.Format(utils.DateLayout))
		if err := LogDelete(ctx, tx, actor, EntityTypeDoctorBill, bill.ID, desc); err != nil {
			return err
		}
		return tx.WithContext(ctx).Delete(bill).Error
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

func GetDoctorBill(ctx context.Context, id int) (*DoctorBill, error) {
	return utils.FetchModel[DoctorBill](ctx, id)
}

func ListDoctorBills(ctx context.Context, from time.Time, to time.Time) ([]*DoctorBill, error) {
	db := config.GetDB()
	var bills []*DoctorBill
	err := db.WithContext(ctx).
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to)).
		Order("date DESC, id DESC").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

// DoctorBillTotal sums doctor bills over the (inclusive) range.
func DoctorBillTotal(ctx context.Context, from time.Time, to time.Time) (decimal.Decimal, error) {
	db := config.GetDB()
	var total decimal.NullDecimal
	err := db.WithContext(ctx).Model(&DoctorBill{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("date >= ? AND date <= ?", utils.DateOnly(from), utils.DateOnly(to)).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}
