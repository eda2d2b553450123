package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hanamaru-app/hanamaru-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestLedgerMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_point_ledger_entries.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS point_ledger_entries",
		"FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE",
		"CHECK ((kind = 'earned' AND delta > 0) OR (kind = 'spent' AND delta < 0))",
		"DROP TABLE IF EXISTS point_ledger_entries",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPaymentCodeMigrationSplitsNamespaces(t *testing.T) {
	content := readMigration(t, "*_create_payment_code_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS payment_codes_basic",
		"CREATE TABLE IF NOT EXISTS payment_codes_remote",
		"code char(5) NOT NULL UNIQUE",
		"code char(6) NOT NULL UNIQUE",
		"used_at timestamptz",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCustomerMigrationForbidsNegativeBalance(t *testing.T) {
	content := readMigration(t, "*_create_customers.sql")

	if !strings.Contains(content, "CHECK (points_balance >= 0)") {
		t.Error("missing non-negative balance constraint")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
