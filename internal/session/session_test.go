package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mzstay/internal/config"
	"mzstay/internal/domain"
	"mzstay/internal/storage"
)

type fakeAPI struct {
	token      string
	loginErr   error
	user       domain.StoredUser
	meErr      error
	forgotErr  error
	loginCalls int
	meCalls    int
	forgotTo   string
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (string, error) {
	f.loginCalls++
	return f.token, f.loginErr
}

func (f *fakeAPI) Me(ctx context.Context, token string) (domain.StoredUser, error) {
	f.meCalls++
	return f.user, f.meErr
}

func (f *fakeAPI) Forgot(ctx context.Context, email string) error {
	f.forgotTo = email
	return f.forgotErr
}

func newManager(t *testing.T, cfg *config.Config, api API) (*Manager, *CredStore) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	creds := NewCredStore(t.TempDir(), storage.NewMemory())
	m := New(cfg, api, creds, nil)
	m.Now = func() time.Time { return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) }
	return m, creds
}

func TestStartsBooting(t *testing.T) {
	m, _ := newManager(t, nil, &fakeAPI{})
	if got := m.Snapshot().Status; got != StatusBooting {
		t.Fatalf("status = %s, want booting", got)
	}
}

func TestBootstrapNoToken(t *testing.T) {
	m, _ := newManager(t, nil, &fakeAPI{})
	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if got := m.Snapshot().Status; got != StatusSignedOut {
		t.Fatalf("status = %s, want signedOut", got)
	}
}

func TestLocalSignInAndBootstrap(t *testing.T) {
	cfg := config.Default()
	m, creds := newManager(t, cfg, &fakeAPI{})
	ctx := context.Background()
	if err := m.SignIn(ctx, "demo", "demo1234"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	snap := m.Snapshot()
	if snap.Status != StatusSignedIn {
		t.Fatalf("status = %s", snap.Status)
	}
	if !strings.HasPrefix(snap.Token, "local:demo:") {
		t.Fatalf("token = %s, want local:demo:<ms>", snap.Token)
	}
	if snap.User == nil || snap.User.Username != "demo" || snap.User.Role != "cleaner" {
		t.Fatalf("user = %+v", snap.User)
	}

	// A fresh manager over the same credentials restores the session.
	m2 := New(cfg, &fakeAPI{}, creds, nil)
	if err := m2.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	snap2 := m2.Snapshot()
	if snap2.Status != StatusSignedIn || snap2.Token != snap.Token {
		t.Fatalf("restored = %+v", snap2)
	}
}

func TestUsernameAliases(t *testing.T) {
	cfg := config.Default()
	cfg.LocalLogin.Username = "cleaner"
	m, _ := newManager(t, cfg, &fakeAPI{})
	if err := m.SignIn(context.Background(), "field", "demo1234"); err != nil {
		t.Fatalf("alias sign in: %v", err)
	}
	if u := m.Snapshot().User; u == nil || u.Username != "cleaner" {
		t.Fatalf("alias not applied: %+v", u)
	}
}

func TestLocalSignInRejectedWrongPassword(t *testing.T) {
	m, _ := newManager(t, nil, &fakeAPI{})
	err := m.SignIn(context.Background(), "demo", "wrong")
	if err == nil {
		t.Fatalf("expected sign-in error")
	}
	if got := m.Snapshot().Status; got == StatusSignedIn {
		t.Fatalf("signed in despite bad password")
	}
}

func TestLocalTokenClearedWhenDisabled(t *testing.T) {
	cfg := config.Default()
	m, creds := newManager(t, cfg, &fakeAPI{})
	ctx := context.Background()
	if err := m.SignIn(ctx, "demo", "demo1234"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	// Backend now configured and demo login switched off: the stale local
	// token must not survive bootstrap.
	cfg2 := config.Default()
	cfg2.API.BaseURL = "https://api.example.com"
	cfg2.LocalLogin.Enabled = false
	m2 := New(cfg2, &fakeAPI{}, creds, nil)
	if err := m2.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if got := m2.Snapshot().Status; got != StatusSignedOut {
		t.Fatalf("status = %s, want signedOut", got)
	}
	token, err := creds.Token(ctx)
	if err != nil || token != "" {
		t.Fatalf("token not cleared: %q, %v", token, err)
	}
}

func TestRemoteSignIn(t *testing.T) {
	cfg := config.Default()
	cfg.API.BaseURL = "https://api.example.com"
	cfg.LocalLogin.Enabled = false
	api := &fakeAPI{token: "tok-9", user: domain.StoredUser{Username: "alice", Role: "cs"}}
	m, creds := newManager(t, cfg, api)
	ctx := context.Background()
	if err := m.SignIn(ctx, "alice", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	snap := m.Snapshot()
	if snap.Token != "tok-9" || snap.User.Role != "cs" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if api.loginCalls != 1 || api.meCalls != 1 {
		t.Fatalf("api calls = %d login, %d me", api.loginCalls, api.meCalls)
	}
	if tok, _ := creds.Token(ctx); tok != "tok-9" {
		t.Fatalf("persisted token = %q", tok)
	}
}

func TestBootstrapRejectedRemoteToken(t *testing.T) {
	cfg := config.Default()
	cfg.API.BaseURL = "https://api.example.com"
	cfg.LocalLogin.Enabled = false
	api := &fakeAPI{token: "tok-9", user: domain.StoredUser{Username: "alice", Role: "cs"}}
	m, creds := newManager(t, cfg, api)
	ctx := context.Background()
	if err := m.SignIn(ctx, "alice", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	api.meErr = errors.New("401 unauthorized")
	m2 := New(cfg, api, creds, nil)
	if err := m2.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap should swallow auth failure: %v", err)
	}
	if got := m2.Snapshot().Status; got != StatusSignedOut {
		t.Fatalf("status = %s, want signedOut", got)
	}
	if tok, _ := creds.Token(ctx); tok != "" {
		t.Fatalf("stale token survived: %q", tok)
	}
}

func TestSignInNoBackendNoDemoMatch(t *testing.T) {
	cfg := config.Default()
	m, _ := newManager(t, cfg, &fakeAPI{})
	if err := m.SignIn(context.Background(), "somebody", "else"); err == nil {
		t.Fatalf("expected error without backend")
	}
}

func TestSignOut(t *testing.T) {
	m, creds := newManager(t, nil, &fakeAPI{})
	ctx := context.Background()
	if err := m.SignIn(ctx, "demo", "demo1234"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	notified := 0
	m.Subscribe(func() { notified++ })
	if err := m.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if got := m.Snapshot().Status; got != StatusSignedOut {
		t.Fatalf("status = %s", got)
	}
	if notified != 1 {
		t.Fatalf("notified %d times, want 1", notified)
	}
	if tok, _ := creds.Token(ctx); tok != "" {
		t.Fatalf("token survived sign out")
	}
}

func TestPasswordResetOfflineNoop(t *testing.T) {
	api := &fakeAPI{}
	m, _ := newManager(t, nil, api)
	if err := m.RequestPasswordReset(context.Background(), "a@b.co"); err != nil {
		t.Fatalf("offline reset: %v", err)
	}
	if api.forgotTo != "" {
		t.Fatalf("offline reset hit the API")
	}

	cfg := config.Default()
	cfg.API.BaseURL = "https://api.example.com"
	m2, _ := newManager(t, cfg, api)
	if err := m2.RequestPasswordReset(context.Background(), "a@b.co"); err != nil {
		t.Fatalf("remote reset: %v", err)
	}
	if api.forgotTo != "a@b.co" {
		t.Fatalf("remote reset did not hit the API")
	}
}
