// Package testutil provides shared test helpers for record stores,
// artifacts and index databases.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/royfox/little-reviews/internal/aggregate"
	"github.com/royfox/little-reviews/internal/catalog"
	"github.com/royfox/little-reviews/internal/index"
	"github.com/royfox/little-reviews/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "littlereviews-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary record store directory.
func TestStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "reviews")
	store, err := storage.OpenFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Record returns a minimal valid record document.
func Record(title, mediaType, reviewDate string) string {
	return fmt.Sprintf("title: %q\ntype: %s\nrating: 4\ntext: Notes on %s.\nreleaseYear: 2001\nreviewDate: %s\n",
		title, mediaType, title, reviewDate)
}

// WriteRecord writes content as dir/name.
func WriteRecord(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// BuildSession aggregates store into a temporary artifact and loads it.
func BuildSession(t *testing.T, store storage.Provider) *catalog.Session {
	t.Helper()
	artifact := filepath.Join(t.TempDir(), "public", "reviews.json")
	if _, err := aggregate.New(store, Logger()).Build(context.Background(), artifact); err != nil {
		t.Fatal(err)
	}
	return catalog.NewLoader(catalog.FileSource{Path: artifact}).Load(context.Background())
}
