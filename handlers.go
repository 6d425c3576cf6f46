package main

import (
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/models"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/models/reports"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/workflow"
	"github.com/gin-gonic/gin"
)

func registerRoutes(r *gin.Engine) {
	r.POST("/auth/login", loginHandler)
	r.POST("/auth/change-password", changePasswordHandler)

	r.GET("/users", listUsersHandler)
	r.POST("/users", createUserHandler)
	r.DELETE("/users/:id", deleteUserHandler)

	r.GET("/days", listDaysHandler)
	r.POST("/days", upsertDayHandler)
	r.DELETE("/days/:id", deleteDayHandler)

	r.GET("/lab-collections", listLabCollectionsHandler)
	r.POST("/lab-collections", upsertLabCollectionHandler)
	r.DELETE("/lab-collections/:id", deleteLabCollectionHandler)

	r.GET("/expenses", listExpensesHandler)
	r.POST("/expenses", createExpenseHandler)
	r.POST("/expenses/bulk", createBulkExpensesHandler)
	r.PUT("/expenses/:id", updateExpenseHandler)
	r.DELETE("/expenses/:id", deleteExpenseHandler)

	r.GET("/expense-templates", listExpenseTemplatesHandler)
	r.POST("/expense-templates", createExpenseTemplateHandler)
	r.DELETE("/expense-templates/:id", deleteExpenseTemplateHandler)

	r.GET("/doctor-bills", listDoctorBillsHandler)
	r.POST("/doctor-bills", createDoctorBillHandler)
	r.PUT("/doctor-bills/:id", updateDoctorBillHandler)
	r.DELETE("/doctor-bills/:id", deleteDoctorBillHandler)

	r.GET("/bank/entries", listBankEntriesHandler)
	r.GET("/bank/balance", bankBalanceHandler)
	r.POST("/bank/transactions", createBankTransactionHandler)
	r.POST("/bank/recalc", recalcBankHandler)
	r.DELETE("/bank/entries/:id", deleteBankEntryHandler)

	r.GET("/staffs", listStaffsHandler)
	r.POST("/staffs", createStaffHandler)
	r.PUT("/staffs/:id", updateStaffHandler)
	r.DELETE("/staffs/:id", deleteStaffHandler)
	r.GET("/staffs/:id/monthly-salaries", listMonthlySalariesHandler)
	r.POST("/staffs/:id/monthly-salaries", setMonthlySalaryHandler)
	r.DELETE("/staffs/:id/monthly-salaries", resetMonthlySalaryHandler)

	r.GET("/staff-payments", listStaffPaymentsHandler)
	r.POST("/staff-payments", recordStaffPaymentHandler)
	r.PUT("/staff-payments/:id", updateStaffPaymentHandler)
	r.DELETE("/staff-payments/:id", deleteStaffPaymentHandler)

	r.GET("/suppliers", listSuppliersHandler)
	r.POST("/suppliers", createSupplierHandler)
	r.PUT("/suppliers/:id", updateSupplierHandler)
	r.DELETE("/suppliers/:id", deleteSupplierHandler)

	r.GET("/supplier-bills", listSupplierBillsHandler)
	r.POST("/supplier-bills", createSupplierBillHandler)
	r.DELETE("/supplier-bills/:id", deleteSupplierBillHandler)

	r.GET("/supplier-payments", listSupplierPaymentsHandler)
	r.POST("/supplier-payments", recordSupplierPaymentHandler)
	r.PUT("/supplier-payments/:id", updateSupplierPaymentHandler)
	r.DELETE("/supplier-payments/:id", deleteSupplierPaymentHandler)

	r.GET("/reports/dashboard", dashboardHandler)
	r.GET("/reports/bank-statement", bankStatementHandler)
	r.GET("/reports/salary-statement", salaryStatementHandler)
	r.GET("/reports/supplier-statement", supplierStatementHandler)
	r.GET("/reports/finance", financeReportHandler)
	r.GET("/reports/finance/export", exportFinanceReportHandler)

	r.GET("/delete-logs", deleteHistoryHandler)
	r.POST("/admin/empty-all-data", emptyAllDataHandler)
}

// requireActor pulls the authenticated caller out of the request
// context, rejecting the request when there is none.
func requireActor(c *gin.Context) (models.Actor, bool) {
	actor, err := models.ActorFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.Actor{}, false
	}
	return actor, true
}

func requireAdmin(c *gin.Context) (models.Actor, bool) {
	actor, ok := requireActor(c)
	if !ok {
		return models.Actor{}, false
	}
	if !actor.Role.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return models.Actor{}, false
	}
	return actor, true
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// dateRange reads from/to query params, defaulting to the current month.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, to := utils.ThisMonthRange()
	if v := c.Query("from"); v != "" {
		parsed, err := utils.ParseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := utils.ParseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	return from, to, true
}

func yearMonth(c *gin.Context) (int, int, bool) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if v := c.Query("month"); v != "" {
		y, m, err := utils.ParseMonth(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month, expected YYYY-MM"})
			return 0, 0, false
		}
		year, month = y, int(m)
	}
	return year, month, true
}

func abortWithError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if err == utils.ErrorRecordNotFound {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// ---- auth ----

func loginHandler(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := models.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := utils.JwtGenerate(user.ID, user.Username, string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func changePasswordHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := models.ChangePassword(c.Request.Context(), actor, input.OldPassword, input.NewPassword); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password changed"})
}

// ---- users ----

func listUsersHandler(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	users, err := models.ListUsers(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func createUserHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	if actor.Role != models.UserRoleSuperadmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "superadmin access required"})
		return
	}
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func deleteUserHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	if actor.Role != models.UserRoleSuperadmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "superadmin access required"})
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	user, err := models.DeleteUser(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ---- days ----

func listDaysHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	days, err := models.ListDaySummaries(c.Request.Context(), from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

func upsertDayHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input models.NewDaySummary
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	day, err := models.UpsertDaySummary(c.Request.Context(), actor, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

func deleteDayHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	day, err := models.DeleteDaySummary(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// ---- lab collections ----

func listLabCollectionsHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	labs, err := models.ListLabCollections(c.Request.Context(), from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, labs)
}

func upsertLabCollectionHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input models.NewLabCollection
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lab, err := models.UpsertLabCollection(c.Request.Context(), actor, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, lab)
}

func deleteLabCollectionHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	lab, err := models.DeleteLabCollection(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, lab)
}

// ---- expenses ----

func listExpensesHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	expenses, err := models.ListExpenses(c.Request.Context(), from, to, c.Query("category"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func createExpenseHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input models.NewExpense
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	expense, err := models.CreateExpense(c.Request.Context(), actor, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func createBulkExpensesHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var inputs []*models.NewExpense
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	expenses, err := models.CreateBulkExpenses(c.Request.Context(), actor, inputs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expenses)
}

func updateExpenseHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewExpense
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	expense, err := models.UpdateExpense(c.Request.Context(), actor, id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func deleteExpenseHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	expense, err := models.DeleteExpense(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// ---- expense templates ----

func listExpenseTemplatesHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	templates, err := models.ListExpenseTemplates(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func createExpenseTemplateHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	var input models.NewExpenseTemplate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	template, err := models.CreateExpenseTemplate(c.Request.Context(), actor, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

func deleteExpenseTemplateHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	template, err := models.DeleteExpenseTemplate(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// ---- doctor bills ----

func listDoctorBillsHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	bills, err := models.ListDoctorBills(c.Request.Context(), from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bills)
}

func createDoctorBillHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input models.NewDoctorBill
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bill, err := models.CreateDoctorBill(c.Request.Context(), actor, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

func updateDoctorBillHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewDoctorBill
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bill, err := models.UpdateDoctorBill(c.Request.Context(), actor, id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func deleteDoctorBillHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	bill, err := models.DeleteDoctorBill(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// ---- bank ----

func listBankEntriesHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	entries, err := models.ListBalanceEntries(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func bankBalanceHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	balance, err := models.BankBalance(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func createBankTransactionHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input models.NewBankTransaction
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := models.CreateBankTransaction(c.Request.Context(), actor, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func recalcBankHandler(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	if err := models.RecalcBankBalances(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recalculated"})
}

func deleteBankEntryHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	entry, err := models.DeleteBalanceEntry(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ---- staff ----

func listStaffsHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	includeInactive := c.Query("include_inactive") == "true"
	staffs, err := models.ListStaffs(c.Request.Context(), includeInactive)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, staffs)
}

func createStaffHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	var input models.NewStaff
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	staff, err := models.CreateStaff(c.Request.Context(), actor, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, staff)
}

func updateStaffHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewStaff
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	staff, err := models.UpdateStaff(c.Request.Context(), actor, id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func deleteStaffHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	staff, err := models.DeleteStaff(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

// ---- monthly salaries ----

func listMonthlySalariesHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	overrides, err := models.ListMonthlySalaries(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, overrides)
}

func setMonthlySalaryHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewStaffMonthlySalary
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.StaffId = id
	override, err := models.SetMonthlySalary(c.Request.Context(), actor, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, override)
}

func resetMonthlySalaryHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	if err := models.ResetMonthlySalary(c.Request.Context(), actor, id, year, month); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// ---- staff payments ----

func listStaffPaymentsHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	staffId, _ := strconv.Atoi(c.Query("staff_id"))
	payments, err := models.ListStaffPayments(c.Request.Context(), staffId, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func recordStaffPaymentHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input workflow.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payment, err := workflow.RecordStaffPayment(c.Request.Context(), actor, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func updateStaffPaymentHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input workflow.UpdatePayment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payment, err := workflow.UpdateStaffPayment(c.Request.Context(), actor, id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func deleteStaffPaymentHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	payment, err := workflow.DeleteStaffPayment(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// ---- suppliers ----

func listSuppliersHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	suppliers, err := models.ListSuppliers(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func createSupplierHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplier, err := models.CreateSupplier(c.Request.Context(), actor, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func updateSupplierHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplier, err := models.UpdateSupplier(c.Request.Context(), actor, id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func deleteSupplierHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	supplier, err := models.DeleteSupplier(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// ---- supplier bills ----

func listSupplierBillsHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	supplierId, _ := strconv.Atoi(c.Query("supplier_id"))
	bills, err := models.ListSupplierBills(c.Request.Context(), supplierId, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bills)
}

func createSupplierBillHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input models.NewSupplierBill
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bill, err := models.CreateSupplierBill(c.Request.Context(), actor, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

func deleteSupplierBillHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	bill, err := models.DeleteSupplierBill(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// ---- supplier payments ----

func listSupplierPaymentsHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	supplierId, _ := strconv.Atoi(c.Query("supplier_id"))
	payments, err := models.ListSupplierPayments(c.Request.Context(), supplierId, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func recordSupplierPaymentHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var input workflow.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payment, err := workflow.RecordSupplierPayment(c.Request.Context(), actor, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func updateSupplierPaymentHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input workflow.UpdatePayment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payment, err := workflow.UpdateSupplierPayment(c.Request.Context(), actor, id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func deleteSupplierPaymentHandler(c *gin.Context) {
	actor, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathId(c)
	if !ok {
		return
	}
	payment, err := workflow.DeleteSupplierPayment(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// ---- reports ----

func dashboardHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	dashboard, err := reports.GetDashboard(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func bankStatementHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	statement, err := reports.GetBankStatement(c.Request.Context(), from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}

func salaryStatementHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	if v := c.Query("staff_id"); v != "" {
		staffId, err := strconv.Atoi(v)
		if err != nil || staffId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid staff_id"})
			return
		}
		statement, err := reports.GetSalaryStatement(c.Request.Context(), staffId, year, month)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, statement)
		return
	}
	statements, err := reports.GetAllSalaryStatements(c.Request.Context(), year, month)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, statements)
}

func supplierStatementHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	supplierId, err := strconv.Atoi(c.Query("supplier_id"))
	if err != nil || supplierId <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier_id"})
		return
	}
	statement, err := reports.GetSupplierStatement(c.Request.Context(), supplierId, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}

func financeReportHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	report, err := reports.GetFinanceReport(c.Request.Context(), from, to, c.Query("category"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func exportFinanceReportHandler(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	f, err := reports.ExportFinanceReportExcel(c.Request.Context(), from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=finance-report.xlsx")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// ---- admin ----

func deleteHistoryHandler(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := models.GetDeleteHistory(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func emptyAllDataHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := models.EmptyAllData(c.Request.Context(), actor); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "all financial data emptied"})
}
