package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get for an absent key.
var ErrNotFound = errors.New("not found")

// KV is the key-value persistence consumed by all stores. Each store keeps
// its whole state under a single key as one JSON blob, so every mutation
// rewrites the full collection. Fine at app data volumes.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Well-known keys. The v1 suffix guards against blob shape changes.
const (
	KeyTasks   = "mzstay.tasks.store.v1"
	KeyNotices = "mzstay.notices.store.v1"
	KeyRepairs = "mzstay.repairs.store.v1"
	KeyProfile = "mzstay.profile.v1"

	KeyAuthToken = "mzstay.auth.token"
	KeyAuthUser  = "mzstay.auth.user"
)

// GetJSON reads key and unmarshals into out. Returns ErrNotFound when the
// key is absent; a corrupt blob is surfaced as an error, not silently
// dropped.
func GetJSON(ctx context.Context, kv KV, key string, out any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON marshals value and writes it under key.
func SetJSON(ctx context.Context, kv KV, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}

// ClearAppData removes every store blob plus the profile. Credentials are
// handled separately by the session manager.
func ClearAppData(ctx context.Context, kv KV) error {
	for _, key := range []string{KeyTasks, KeyNotices, KeyRepairs, KeyProfile} {
		if err := kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}
