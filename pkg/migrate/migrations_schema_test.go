package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bargen/bargen-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestMigrationsCreateMarketplaceTables(t *testing.T) {
	cases := map[string][]string{
		"*_create_products.sql": {
			"CREATE TABLE IF NOT EXISTS products",
			"verification_labels   jsonb",
			"CHECK (condition IN ('new', 'used'))",
		},
		"*_create_bargain_requests.sql": {
			"CREATE TABLE IF NOT EXISTS bargain_requests",
			"desired_price     bigint NOT NULL CHECK (desired_price >= 0)",
			"mutually_accepted boolean NOT NULL DEFAULT false",
		},
		"*_create_cart_tables.sql": {
			"PRIMARY KEY (customer, product_id)",
			"CREATE TABLE IF NOT EXISTS insurance_selections",
		},
		"*_create_messages_and_wishlist.sql": {
			"CREATE INDEX IF NOT EXISTS messages_thread_idx",
			"CREATE UNIQUE INDEX IF NOT EXISTS wishlist_items_customer_product_key",
		},
		"*_create_delivery_tables.sql": {
			"CREATE TABLE IF NOT EXISTS delivery_partners",
			"'driver_pending_assignment'",
			"completion_code  text NOT NULL",
		},
	}

	for pattern, checks := range cases {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		if err != nil {
			t.Fatalf("glob %s: %v", pattern, err)
		}
		if len(matches) != 1 {
			t.Fatalf("expected one migration for %s, got %v", pattern, matches)
		}
		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read %s: %v", matches[0], err)
		}
		for _, sub := range checks {
			if !strings.Contains(string(data), sub) {
				t.Errorf("%s missing %q", matches[0], sub)
			}
		}
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Shop Hours!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_shop_hours.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestEmbeddedMigrationsMatchSourceTree(t *testing.T) {
	if err := migrate.ValidateFS(migrate.Embedded()); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	embedded, err := fs.Glob(migrate.Embedded(), "*.sql")
	if err != nil {
		t.Fatalf("embedded glob: %v", err)
	}
	if len(embedded) != len(onDisk) {
		t.Fatalf("embedded %d migrations, source tree has %d", len(embedded), len(onDisk))
	}
}

func TestValidateDirRejectsDownBeforeUp(t *testing.T) {
	dir := t.TempDir()
	body := []byte("-- +goose Down\nDROP TABLE x;\n-- +goose Up\nCREATE TABLE x (id int);\n")
	if err := os.WriteFile(filepath.Join(dir, "20260101000000_swapped.sql"), body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "Down before Up") {
		t.Fatalf("expected ordering error, got %v", err)
	}
}
