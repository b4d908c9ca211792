// Package authapi is the remote auth backend client. Deployments mount
// the auth routes in more than one shape (/api/auth/login, /auth/login,
// /login), so each call derives a candidate URL list from the configured
// base and falls through on 404: the first non-404 response wins.
package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"mzstay/internal/domain"
)

// ErrNotConfigured means remote login was attempted without a base URL.
var ErrNotConfigured = errors.New("backend base URL not configured")

const requestTimeout = 15 * time.Second

type endpoint string

const (
	epLogin  endpoint = "login"
	epMe     endpoint = "me"
	epForgot endpoint = "forgot"
)

// Client calls the remote auth API.
type Client struct {
	baseURL string
	http    *resty.Client
	log     *zap.Logger
}

// New builds a client for the given base URL. An empty base is allowed;
// calls will fail with ErrNotConfigured.
func New(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	httpClient := resty.New().
		SetTimeout(requestTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
		log:     log,
	}
}

type loginResponse struct {
	Token string `json:"token"`
}

type meResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	res, err := c.probe(ctx, epLogin, func(r *resty.Request, url string) (*resty.Response, error) {
		return r.SetBody(map[string]string{"username": username, "password": password}).Post(url)
	})
	if err != nil {
		return "", err
	}
	var body loginResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil || body.Token == "" {
		return "", errors.New("login succeeded but no token returned")
	}
	return body.Token, nil
}

// Me fetches the profile behind a token.
func (c *Client) Me(ctx context.Context, token string) (domain.StoredUser, error) {
	res, err := c.probe(ctx, epMe, func(r *resty.Request, url string) (*resty.Response, error) {
		return r.SetHeader("Authorization", "Bearer "+token).Get(url)
	})
	if err != nil {
		return domain.StoredUser{}, err
	}
	var body meResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil || body.Username == "" || body.Role == "" {
		return domain.StoredUser{}, errors.New("incomplete user info returned")
	}
	return domain.StoredUser{Username: body.Username, Role: body.Role}, nil
}

// Forgot requests a password reset email.
func (c *Client) Forgot(ctx context.Context, email string) error {
	_, err := c.probe(ctx, epForgot, func(r *resty.Request, url string) (*resty.Response, error) {
		return r.SetBody(map[string]string{"email": email}).Post(url)
	})
	return err
}

// probe walks the candidate URLs, skipping 404s. The last response, 404
// or not, is the one judged.
func (c *Client) probe(ctx context.Context, ep endpoint, do func(*resty.Request, string) (*resty.Response, error)) (*resty.Response, error) {
	urls := candidates(c.baseURL, ep)
	if len(urls) == 0 {
		return nil, ErrNotConfigured
	}
	var last *resty.Response
	for _, url := range urls {
		res, err := do(c.http.R().SetContext(ctx), url)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ep, err)
		}
		last = res
		if res.StatusCode() != 404 {
			break
		}
		c.log.Debug("auth endpoint not found, trying next candidate",
			zap.String("endpoint", string(ep)), zap.String("url", url))
	}
	if last.IsError() {
		return nil, errors.New(errorMessage(last))
	}
	return last, nil
}

func errorMessage(res *resty.Response) string {
	var body errorResponse
	if err := json.Unmarshal(res.Body(), &body); err == nil {
		if msg := strings.TrimSpace(body.Message); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("request failed (%d)", res.StatusCode())
}

// candidates lists URLs for an endpoint: the raw base, the base with a
// trailing /auth stripped, and with a trailing /api stripped, each joined
// with the prefixed and bare path. Duplicates are dropped, order kept.
func candidates(base string, ep endpoint) []string {
	if base == "" {
		return nil
	}
	stripAuth := strings.TrimSuffix(base, "/auth")
	stripAPI := strings.TrimSuffix(stripAuth, "/api")
	paths := []string{"auth/" + string(ep), string(ep)}

	seen := map[string]bool{}
	var out []string
	for _, b := range []string{base, stripAuth, stripAPI} {
		for _, p := range paths {
			u := b + "/" + p
			if !seen[u] {
				seen[u] = true
				out = append(out, u)
			}
		}
	}
	return out
}
