package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mzstay/internal/domain"
	"mzstay/internal/storage"
)

// CredStore is the best-effort secure credential cache: a 0600 file in the
// workspace, falling back to the shared KV when the file is unusable.
// Reads prefer the file and fall through to the KV, so either surviving
// copy wins.
type CredStore struct {
	path string
	kv   storage.KV
}

func NewCredStore(workspace string, kv storage.KV) *CredStore {
	if workspace == "" {
		workspace = "."
	}
	return &CredStore{
		path: filepath.Join(workspace, ".mzstay", "credentials.json"),
		kv:   kv,
	}
}

type credFile struct {
	Token string             `json:"token,omitempty"`
	User  *domain.StoredUser `json:"user,omitempty"`
}

func (c *CredStore) read() (credFile, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return credFile{}, err
	}
	var f credFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return credFile{}, err
	}
	return f, nil
}

func (c *CredStore) write(f credFile) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, raw, 0o600)
}

func (c *CredStore) update(ctx context.Context, apply func(*credFile)) error {
	f, err := c.read()
	if err != nil && !os.IsNotExist(err) {
		f = credFile{}
	}
	apply(&f)
	if err := c.write(f); err == nil {
		return nil
	}
	// File store unusable; keep credentials in the KV instead.
	if f.Token != "" {
		if err := c.kv.Set(ctx, storage.KeyAuthToken, []byte(f.Token)); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
	} else if err := c.kv.Delete(ctx, storage.KeyAuthToken); err != nil {
		return err
	}
	if f.User != nil {
		if err := storage.SetJSON(ctx, c.kv, storage.KeyAuthUser, f.User); err != nil {
			return err
		}
	} else if err := c.kv.Delete(ctx, storage.KeyAuthUser); err != nil {
		return err
	}
	return nil
}

// Token returns the persisted token, empty when signed out.
func (c *CredStore) Token(ctx context.Context) (string, error) {
	if f, err := c.read(); err == nil && f.Token != "" {
		return f.Token, nil
	}
	raw, err := c.kv.Get(ctx, storage.KeyAuthToken)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// User returns the persisted credential cache entry, nil when absent or
// malformed.
func (c *CredStore) User(ctx context.Context) (*domain.StoredUser, error) {
	if f, err := c.read(); err == nil && f.User != nil {
		if f.User.Username != "" && f.User.Role != "" {
			return f.User, nil
		}
	}
	var u domain.StoredUser
	err := storage.GetJSON(ctx, c.kv, storage.KeyAuthUser, &u)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, nil
	}
	if u.Username == "" || u.Role == "" {
		return nil, nil
	}
	return &u, nil
}

// SetToken persists the token.
func (c *CredStore) SetToken(ctx context.Context, token string) error {
	return c.update(ctx, func(f *credFile) { f.Token = token })
}

// SetUser overwrites the credential cache entry wholesale.
func (c *CredStore) SetUser(ctx context.Context, u domain.StoredUser) error {
	return c.update(ctx, func(f *credFile) { f.User = &u })
}

// Clear removes both token and user from every location.
func (c *CredStore) Clear(ctx context.Context) error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := c.kv.Delete(ctx, storage.KeyAuthToken); err != nil {
		return err
	}
	return c.kv.Delete(ctx, storage.KeyAuthUser)
}
