package models

// UserRole determines what a user may do at the request boundary.
type UserRole string

const (
	UserRoleSuperadmin UserRole = "superadmin"
	UserRoleAdmin      UserRole = "admin"
	UserRoleEmployee   UserRole = "employee"
)

func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin || r == UserRoleSuperadmin
}

// PaymentSource is where the money for a staff/supplier payment comes from.
// Bank-sourced payments generate a BalanceEntry debit next to the Expense.
type PaymentSource string

const (
	PaymentSourceCash PaymentSource = "cash"
	PaymentSourceBank PaymentSource = "bank"
)

func (s PaymentSource) Valid() bool {
	return s == PaymentSourceCash || s == PaymentSourceBank
}

// Entity type names recorded in the delete log.
const (
	EntityTypeDay             = "day"
	EntityTypeExpense         = "expense"
	EntityTypeDoctorBill      = "doctor_bill"
	EntityTypeBankEntry       = "bank_entry"
	EntityTypeStaff           = "staff"
	EntityTypeStaffPayment    = "staff_payment"
	EntityTypeSupplier        = "supplier"
	EntityTypeSupplierBill    = "supplier_bill"
	EntityTypeSupplierPayment = "supplier_payment"
	EntityTypeExpenseTemplate = "expense_template"
	EntityTypeLabCollection   = "lab_collection"
	EntityTypeAllData         = "all_data"
)

// Expense categories written by the payment linker. Directly added
// expenses carry free-text categories; these two mark generated rows.
const (
	ExpenseCategorySalary   = "Salary"
	ExpenseCategorySupplier = "Supplier"
	ExpenseCategoryGeneral  = "General"
)
