package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"001_create_schema.up.sql",
		"001_create_schema.down.sql",
		"002_add_indexes.up.sql",
		"002_add_indexes.down.sql",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("-- noop"), 0o644); err != nil {
			t.Fatalf("failed to write migration fixture: %v", err)
		}
	}

	up, err := migrationFiles(dir, "up")
	if err != nil {
		t.Fatalf("migrationFiles(up) error = %v", err)
	}
	wantUp := []string{
		filepath.Join(dir, "001_create_schema.up.sql"),
		filepath.Join(dir, "002_add_indexes.up.sql"),
	}
	assertOrder(t, "up", up, wantUp)

	down, err := migrationFiles(dir, "down")
	if err != nil {
		t.Fatalf("migrationFiles(down) error = %v", err)
	}
	wantDown := []string{
		filepath.Join(dir, "002_add_indexes.down.sql"),
		filepath.Join(dir, "001_create_schema.down.sql"),
	}
	assertOrder(t, "down", down, wantDown)
}

func TestMigrationFiles_EmptyDirectory(t *testing.T) {
	if _, err := migrationFiles(t.TempDir(), "up"); err == nil {
		t.Error("migrationFiles() error = nil, want error for directory without migrations")
	}
}

func assertOrder(t *testing.T, direction string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d files, want %d", direction, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %s, want %s", direction, i, got[i], want[i])
		}
	}
}
