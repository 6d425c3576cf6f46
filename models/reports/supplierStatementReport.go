package reports

import (
	"context"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/models"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
	"github.com/shopspring/decimal"
)

type SupplierStatementResponse struct {
	SupplierId    int                       `json:"supplier_id"`
	SupplierName  string                    `json:"supplier_name"`
	FromDate      time.Time                 `json:"from_date"`
	ToDate        time.Time                 `json:"to_date"`
	OpeningDue    decimal.Decimal           `json:"opening_due"`
	PeriodBilled  decimal.Decimal           `json:"period_billed"`
	PeriodPaid    decimal.Decimal           `json:"period_paid"`
	ClosingDue    decimal.Decimal           `json:"closing_due"`
	Bills         []*models.SupplierBill    `json:"bills"`
	Payments      []*models.SupplierPayment `json:"payments"`
}

// GetSupplierStatement reconciles one supplier over the (inclusive)
// range. Opening due covers everything strictly before the range;
// closing = opening + period bills − period payments.
func GetSupplierStatement(ctx context.Context, supplierId int, from time.Time, to time.Time) (*SupplierStatementResponse, error) {
	supplier, err := models.GetSupplier(ctx, supplierId)
	if err != nil {
		return nil, err
	}

	from = utils.DateOnly(from)
	to = utils.DateOnly(to)
	dayBefore := from.AddDate(0, 0, -1)

	billedBefore, err := models.SupplierBillTotal(ctx, supplierId, dayBefore)
	if err != nil {
		return nil, err
	}
	paidBefore, err := models.SupplierPaidTotal(ctx, supplierId, dayBefore)
	if err != nil {
		return nil, err
	}
	openingDue := billedBefore.Sub(paidBefore)

	bills, err := models.ListSupplierBills(ctx, supplierId, from, to)
	if err != nil {
		return nil, err
	}
	payments, err := models.ListSupplierPayments(ctx, supplierId, from, to)
	if err != nil {
		return nil, err
	}

	periodBilled := decimal.Zero
	for _, b := range bills {
		periodBilled = periodBilled.Add(b.Amount)
	}
	periodPaid := decimal.Zero
	for _, p := range payments {
		periodPaid = periodPaid.Add(p.Amount)
	}

	return &SupplierStatementResponse{
		SupplierId:   supplier.ID,
		SupplierName: supplier.Name,
		FromDate:     from,
		ToDate:       to,
		OpeningDue:   openingDue,
		PeriodBilled: periodBilled,
		PeriodPaid:   periodPaid,
		ClosingDue:   openingDue.Add(periodBilled).Sub(periodPaid),
		Bills:        bills,
		Payments:     payments,
	}, nil
}
