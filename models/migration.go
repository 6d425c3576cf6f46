package models

import (
	"context"
	"errors"
	"log"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"gorm.io/gorm"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&DaySummary{}, &LabCollection{},
		&Expense{}, &ExpenseTemplate{},
		&DoctorBill{},
		&BalanceEntry{},
		&Staff{}, &StaffMonthlySalary{}, &StaffPayment{},
		&Supplier{}, &SupplierBill{}, &SupplierPayment{},
		&DeleteLog{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

// EmptyAllData wipes every financial table but keeps user accounts.
// Superadmin only. One audit row records who pulled the trigger.
func EmptyAllData(ctx context.Context, actor Actor) error {
	if actor.Role != UserRoleSuperadmin {
		return errors.New("only superadmin can empty all data")
	}

	db := config.GetDB()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := LogDelete(ctx, tx, actor, EntityTypeAllData, 0, "Emptied all financial data"); err != nil {
			return err
		}
		tables := []any{
			&DaySummary{}, &LabCollection{},
			&Expense{}, &ExpenseTemplate{},
			&DoctorBill{},
			&BalanceEntry{},
			&StaffPayment{}, &StaffMonthlySalary{}, &Staff{},
			&SupplierPayment{}, &SupplierBill{}, &Supplier{},
		}
		for _, table := range tables {
			if err := tx.WithContext(ctx).Where("1 = 1").Delete(table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
