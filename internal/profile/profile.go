// Package profile persists the staff member's editable card.
package profile

import (
	"context"
	"errors"
	"strings"

	"mzstay/internal/domain"
	"mzstay/internal/storage"
)

// Get returns the stored profile, or ok=false when none exists yet.
func Get(ctx context.Context, kv storage.KV) (domain.Profile, bool, error) {
	var p domain.Profile
	err := storage.GetJSON(ctx, kv, storage.KeyProfile, &p)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Profile{}, false, nil
	}
	if err != nil {
		return domain.Profile{}, false, err
	}
	return p, true, nil
}

// Set overwrites the stored profile.
func Set(ctx context.Context, kv storage.KV, p domain.Profile) error {
	return storage.SetJSON(ctx, kv, storage.KeyProfile, p)
}

// Clear removes the stored profile.
func Clear(ctx context.Context, kv storage.KV) error {
	return kv.Delete(ctx, storage.KeyProfile)
}

// DefaultFromUser derives a starter profile from the signed-in user.
func DefaultFromUser(user *domain.StoredUser) domain.Profile {
	name := ""
	dept := ""
	if user != nil {
		name = strings.TrimSpace(user.Username)
		dept = strings.TrimSpace(user.Role)
	}
	if name == "" {
		name = "Alice"
	}
	if dept == "" {
		dept = "Staff"
	}
	return domain.Profile{Name: name, Department: dept}
}
