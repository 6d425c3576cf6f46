// seed-admin creates the bootstrap superadmin account when it does not
// exist yet.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... SEED_ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/models"
)

func main() {
	password := strings.TrimSpace(os.Getenv("SEED_ADMIN_PASSWORD"))
	if password == "" {
		fmt.Fprintln(os.Stderr, "SEED_ADMIN_PASSWORD is required")
		os.Exit(1)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	user, err := models.EnsureSeedSuperadmin(ctx, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed superadmin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Superadmin ready: username=%q (id=%d)\n", user.Username, user.ID)
}
