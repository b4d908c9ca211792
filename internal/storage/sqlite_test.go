package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mzstay/internal/migrate"
	"mzstay/internal/storage"
)

func newKV(t *testing.T) storage.SQLite {
	t.Helper()
	dir := t.TempDir()
	conn, err := storage.Open(storage.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return storage.NewSQLite(conn)
}

func TestEnsureWorkspace(t *testing.T) {
	dir := t.TempDir()
	path, err := storage.EnsureWorkspace(dir)
	if err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	if path != filepath.Join(dir, ".mzstay") {
		t.Fatalf("workspace path = %s", path)
	}
	// Second call is a no-op.
	if _, err := storage.EnsureWorkspace(dir); err != nil {
		t.Fatalf("re-ensure: %v", err)
	}
}

func TestKVRoundTrip(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing key error = %v, want ErrNotFound", err)
	}
	if err := kv.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := kv.Get(ctx, "k")
	if err != nil || string(got) != "v1" {
		t.Fatalf("get = %q, %v", got, err)
	}
	// Upsert replaces.
	if err := kv.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err = kv.Get(ctx, "k")
	if err != nil || string(got) != "v2" {
		t.Fatalf("after upsert = %q, %v", got, err)
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("after delete error = %v, want ErrNotFound", err)
	}
	// Deleting an absent key is fine.
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("re-delete: %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()
	type blob struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	if err := storage.SetJSON(ctx, kv, "b", blob{Name: "x", Count: 3}); err != nil {
		t.Fatalf("set json: %v", err)
	}
	var out blob
	if err := storage.GetJSON(ctx, kv, "b", &out); err != nil {
		t.Fatalf("get json: %v", err)
	}
	if out.Name != "x" || out.Count != 3 {
		t.Fatalf("round trip = %+v", out)
	}
	// Corrupt blobs surface an error rather than ErrNotFound.
	if err := kv.Set(ctx, "bad", []byte("{nope")); err != nil {
		t.Fatalf("set corrupt: %v", err)
	}
	err := storage.GetJSON(ctx, kv, "bad", &out)
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("corrupt blob error = %v", err)
	}
}

func TestClearAppData(t *testing.T) {
	kv := newKV(t)
	ctx := context.Background()
	for _, key := range []string{storage.KeyTasks, storage.KeyNotices, storage.KeyRepairs, storage.KeyProfile, storage.KeyAuthToken} {
		if err := kv.Set(ctx, key, []byte("x")); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
	if err := storage.ClearAppData(ctx, kv); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, key := range []string{storage.KeyTasks, storage.KeyNotices, storage.KeyRepairs, storage.KeyProfile} {
		if _, err := kv.Get(ctx, key); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("%s survived clear", key)
		}
	}
	// Credentials are out of scope for an app-data wipe.
	if _, err := kv.Get(ctx, storage.KeyAuthToken); err != nil {
		t.Fatalf("auth token should survive: %v", err)
	}
}
