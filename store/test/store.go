package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hrygo/switchboard/internal/profile"
	"github.com/hrygo/switchboard/store"
	"github.com/hrygo/switchboard/store/db"
)

// NewTestingStore opens a migrated store. SQLite in a temp dir is the
// default; set DRIVER=postgres with POSTGRES_TEST_DSN to run against
// a real PostgreSQL.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	p := getTestingProfile(t)

	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}
	s := store.New(dbDriver, p)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func getTestingProfile(t *testing.T) *profile.Profile {
	t.Helper()
	p := &profile.Profile{Mode: "dev", Version: "test"}

	if os.Getenv("DRIVER") == "postgres" {
		dsn := os.Getenv("POSTGRES_TEST_DSN")
		if dsn == "" {
			t.Skip("POSTGRES_TEST_DSN is not set")
		}
		p.Driver = "postgres"
		p.DSN = dsn
		return p
	}

	dir := t.TempDir()
	p.Driver = "sqlite"
	p.Data = dir
	p.DSN = filepath.Join(dir, "switchboard_test.db")
	return p
}
