// Package session manages the signed-in identity: bootstrap from
// persisted credentials, local demo sign-in, remote sign-in, sign-out and
// password reset requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mzstay/internal/config"
	"mzstay/internal/domain"
	"mzstay/internal/events"
)

// Status is the session state machine: booting until Bootstrap resolves,
// then signedOut or signedIn.
type Status string

const (
	StatusBooting   Status = "booting"
	StatusSignedOut Status = "signedOut"
	StatusSignedIn  Status = "signedIn"
)

const localTokenPrefix = "local:"

// Username aliases accepted at the sign-in form.
var usernameAliases = map[string]string{
	"ops":   "cs",
	"field": "cleaner",
}

// API is the remote auth surface the manager depends on.
type API interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, token string) (domain.StoredUser, error)
	Forgot(ctx context.Context, email string) error
}

// Manager owns the session state. Construct with New, then Bootstrap.
type Manager struct {
	cfg   *config.Config
	api   API
	creds *CredStore
	log   *zap.Logger
	Now   func() time.Time

	mu     sync.Mutex
	status Status
	token  string
	user   *domain.StoredUser
	hub    *events.Hub
}

func New(cfg *config.Config, api API, creds *CredStore, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		api:    api,
		creds:  creds,
		log:    log,
		Now:    time.Now,
		status: StatusBooting,
		hub:    events.NewHub(),
	}
}

// Snapshot is the observable session state.
type Snapshot struct {
	Status Status
	Token  string
	User   *domain.StoredUser
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Status: m.status, Token: m.token, User: m.user}
}

func (m *Manager) Subscribe(fn func()) (cancel func()) {
	return m.hub.Subscribe(fn)
}

// Bootstrap resolves the persisted token into a definite signed-in or
// signed-out state. Remote validation failures are not errors: they clear
// the stale credentials and land signed out.
func (m *Manager) Bootstrap(ctx context.Context) error {
	token, err := m.creds.Token(ctx)
	if err != nil {
		m.log.Warn("credential read failed", zap.Error(err))
		m.setSignedOut()
		return nil
	}
	if token == "" {
		m.setSignedOut()
		return nil
	}
	stored, _ := m.creds.User(ctx)

	if strings.HasPrefix(token, localTokenPrefix) {
		if !m.cfg.LocalLoginAllowed() {
			_ = m.creds.Clear(ctx)
			m.setSignedOut()
			return nil
		}
		user := m.localUserFrom(token, stored)
		if err := m.creds.SetUser(ctx, user); err != nil {
			return fmt.Errorf("store user: %w", err)
		}
		m.setSignedIn(token, user)
		return nil
	}

	remote, err := m.api.Me(ctx, token)
	if err != nil {
		m.log.Info("stored token rejected, signing out", zap.Error(err))
		_ = m.creds.Clear(ctx)
		m.setSignedOut()
		return nil
	}
	if err := m.creds.SetUser(ctx, remote); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	m.setSignedIn(token, remote)
	return nil
}

// SignIn authenticates either against the local demo account or the
// remote backend, persists the credentials and moves to signedIn.
func (m *Manager) SignIn(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if alias, ok := usernameAliases[username]; ok {
		username = alias
	}

	if m.cfg.LocalLoginAllowed() &&
		username == m.cfg.LocalLogin.Username &&
		password == m.cfg.LocalLogin.Password {
		user := domain.StoredUser{Username: username, Role: m.cfg.LocalLogin.Role}
		token := m.localToken(username)
		if err := m.persistCredentials(ctx, token, user); err != nil {
			return err
		}
		m.setSignedIn(token, user)
		m.log.Info("local sign-in", zap.String("username", username))
		return nil
	}
	if strings.TrimSpace(m.cfg.API.BaseURL) == "" {
		return errors.New("backend not configured and demo credentials do not match")
	}

	token, err := m.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	user, err := m.api.Me(ctx, token)
	if err != nil {
		return err
	}
	if err := m.persistCredentials(ctx, token, user); err != nil {
		return err
	}
	m.setSignedIn(token, user)
	m.log.Info("remote sign-in", zap.String("username", user.Username), zap.String("role", user.Role))
	return nil
}

// SignOut deletes the credential cache and moves to signedOut.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.creds.Clear(ctx); err != nil {
		return err
	}
	m.setSignedOut()
	return nil
}

// RequestPasswordReset asks the backend for a reset email. In offline demo
// mode it succeeds without doing anything.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	if strings.TrimSpace(m.cfg.API.BaseURL) == "" && m.cfg.LocalLoginAllowed() {
		return nil
	}
	return m.api.Forgot(ctx, email)
}

func (m *Manager) persistCredentials(ctx context.Context, token string, user domain.StoredUser) error {
	if err := m.creds.SetToken(ctx, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := m.creds.SetUser(ctx, user); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

func (m *Manager) localToken(username string) string {
	return fmt.Sprintf("%s%s:%d", localTokenPrefix, url.QueryEscape(username), m.Now().UnixMilli())
}

// localUserFrom rebuilds the local identity on bootstrap: the cached user
// if complete, else the username embedded in the token, else the
// configured demo account.
func (m *Manager) localUserFrom(token string, stored *domain.StoredUser) domain.StoredUser {
	if stored != nil && stored.Username != "" && stored.Role != "" {
		return *stored
	}
	username := ""
	parts := strings.SplitN(token, ":", 3)
	if len(parts) >= 2 {
		if decoded, err := url.QueryUnescape(parts[1]); err == nil {
			username = decoded
		}
	}
	if username == "" {
		username = m.cfg.LocalLogin.Username
	}
	role := m.cfg.LocalLogin.Role
	if stored != nil && stored.Role != "" {
		role = stored.Role
	}
	return domain.StoredUser{Username: username, Role: role}
}

func (m *Manager) setSignedIn(token string, user domain.StoredUser) {
	m.mu.Lock()
	m.status = StatusSignedIn
	m.token = token
	u := user
	m.user = &u
	m.mu.Unlock()
	m.hub.Notify()
}

func (m *Manager) setSignedOut() {
	m.mu.Lock()
	m.status = StatusSignedOut
	m.token = ""
	m.user = nil
	m.mu.Unlock()
	m.hub.Notify()
}
