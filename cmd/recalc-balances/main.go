// recalc-balances rewrites the cached running balance on every bank
// ledger row. Safe to run at any time; the recalculation is idempotent.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/recalc-balances
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/models"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	if err := models.RecalcBankBalances(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "recalculation failed: %v\n", err)
		os.Exit(1)
	}

	balance, err := models.BankBalance(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read balance: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Recalculated bank ledger. Current balance: %s\n", balance.StringFixed(2))
}
