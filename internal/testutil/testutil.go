// Package testutil provides shared test helpers for setting up vaults and catalogs.
package testutil

import (
	"os"
	"testing"

	"github.com/mvantol/ansuz/internal/catalog"
	"github.com/mvantol/ansuz/internal/layout"
	"github.com/mvantol/ansuz/internal/storage"
)

// TestCatalog creates a temporary SQLite catalog that is automatically cleaned up.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// TestLayout resolves a fresh vault layout with the memoization cache reset
// around the test.
func TestLayout(t *testing.T) *layout.Layout {
	t.Helper()
	layout.ResetCache()
	t.Cleanup(layout.ResetCache)
	l, err := layout.Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := l.EnsureExists(); err != nil {
		t.Fatal(err)
	}
	return l
}
