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

// ExpenseTemplate pre-fills recurring expense rows by name.
type ExpenseTemplate struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	Name               string          `gorm:"size:120;uniqueIndex;not null" json:"name"`
	DefaultDescription string          `gorm:"size:255" json:"default_description"`
	DefaultAmount      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"default_amount"`
	DefaultCategory    string          `gorm:"size:50" json:"default_category"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewExpenseTemplate struct {
	Name               string          `json:"name" binding:"required"`
	DefaultDescription string          `json:"default_description"`
	DefaultAmount      decimal.Decimal `json:"default_amount"`
	DefaultCategory    string          `json:"default_category"`
}

func CreateExpenseTemplate(ctx context.Context, actor Actor, input *NewExpenseTemplate) (*ExpenseTemplate, error) {
	if input.Name == "" {
		return nil, errors.New("template name is required")
	}
	if input.DefaultAmount.IsNegative() {
		return nil, errors.New("template default amount cannot be negative")
	}

	db := config.GetDB()
	count, err := utils.ResourceCountWhere[ExpenseTemplate](ctx, "name = ?", input.Name)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("an expense template with this name already exists")
	}

	template := ExpenseTemplate{
		Name:               input.Name,
		DefaultDescription: input.DefaultDescription,
		DefaultAmount:      input.DefaultAmount,
		DefaultCategory:    input.DefaultCategory,
	}
	if err := db.WithContext(ctx).Create(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func DeleteExpenseTemplate(ctx context.Context, actor Actor, id int) (*ExpenseTemplate, error) {
	template, err := utils.FetchModel[ExpenseTemplate](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		desc := fmt.Sprintf("Deleted expense template %s", template.Name)
		if err := LogDelete(ctx, tx, actor, EntityTypeExpenseTemplate, template.ID, desc); err != nil {
			return err
		}
		return tx.WithContext(ctx).Delete(template).Error
	})
	if err != nil {
		return nil, err
	}
	return template, nil
}

// FindExpenseTemplateByName returns nil without error when no template
// matches, so callers can fall back to the raw expense input.
func FindExpenseTemplateByName(ctx context.Context, name string) (*ExpenseTemplate, error) {
	db := config.GetDB()
	var template ExpenseTemplate
	err := db.WithContext(ctx).Where("name = ?", name).First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func ListExpenseTemplates(ctx context.Context) ([]*ExpenseTemplate, error) {
	db := config.GetDB()
	var templates []*ExpenseTemplate
	err := db.WithContext(ctx).Order("name ASC").Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}
