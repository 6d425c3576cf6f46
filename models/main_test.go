package models

import (
	"strings"
	"testing"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB swaps in an isolated in-memory database for one test.
func openTestDB(t *testing.T) {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	config.SetDB(db)
	MigrateTable()
}

func testActor() Actor {
	return Actor{ID: 1, Username: "tester", Role: UserRoleAdmin}
}
