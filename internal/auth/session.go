// Package auth implements the authenticated executor every resource call goes
// through: it attaches the bearer token, refreshes it when the API answers 401 and
// replays the request once.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mikelcalvo/admin-cli/internal/logging"
	"github.com/mikelcalvo/admin-cli/internal/requester"
)

var (
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrRefreshFailed = errors.New("token refresh failed")
)

// Default token endpoints, relative to the API base URL.
const (
	DefaultTokenPath   = "token/"
	DefaultRefreshPath = "token/refresh/"
)

// refreshLeeway is how close to expiry an access token may get before it is
// refreshed ahead of the request.
const refreshLeeway = 30 * time.Second

// Tokens is a JWT access/refresh pair.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenStore persists tokens after login or refresh.
type TokenStore interface {
	SaveTokens(Tokens) error
}

// Config configures a Session.
type Config struct {
	BaseURL     string
	TokenPath   string
	RefreshPath string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *slog.Logger
	Store       TokenStore
}

// Session is a requester.Executor holding one user's tokens. It is safe for
// concurrent use.
type Session struct {
	baseURL     string
	tokenPath   string
	refreshPath string
	client      *http.Client
	logger      *slog.Logger
	store       TokenStore

	mu     sync.RWMutex
	tokens Tokens

	refreshGroup singleflight.Group
}

var _ requester.Executor = (*Session)(nil)

// NewSession creates a session starting from tokens (possibly empty).
func NewSession(cfg Config, tokens Tokens) *Session {
	s := &Session{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tokenPath:   strings.TrimLeft(cfg.TokenPath, "/"),
		refreshPath: strings.TrimLeft(cfg.RefreshPath, "/"),
		client:      cfg.HTTPClient,
		logger:      cfg.Logger,
		store:       cfg.Store,
		tokens:      tokens,
	}
	if s.tokenPath == "" {
		s.tokenPath = DefaultTokenPath
	}
	if s.refreshPath == "" {
		s.refreshPath = DefaultRefreshPath
	}
	if s.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		s.client = &http.Client{Timeout: timeout}
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s
}

// Tokens returns the current token pair.
func (s *Session) Tokens() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// LoggedIn reports whether the session holds any token.
func (s *Session) LoggedIn() bool {
	t := s.Tokens()
	return t.Access != "" || t.Refresh != ""
}

// Login exchanges credentials for a token pair.
func (s *Session) Login(ctx context.Context, username, password string) (Tokens, error) {
	payload := map[string]string{
		"username": username,
		"password": password,
	}

	resp, err := s.postJSON(ctx, s.tokenPath, payload)
	if err != nil {
		return Tokens{}, fmt.Errorf("login request failed: %w", err)
	}
	if !resp.OK() {
		return Tokens{}, fmt.Errorf("login failed: %d %s: %s", resp.StatusCode, resp.Status, strings.TrimSpace(string(resp.Body)))
	}

	var tokens Tokens
	if err := resp.JSON(&tokens); err != nil {
		return Tokens{}, fmt.Errorf("failed to parse login response: %w", err)
	}
	if tokens.Access == "" {
		return Tokens{}, errors.New("login response carried no access token")
	}

	if err := s.setTokens(tokens); err != nil {
		return tokens, err
	}
	return tokens, nil
}

// Logout forgets the tokens.
func (s *Session) Logout() error {
	return s.setTokens(Tokens{})
}

// Refresh trades the refresh token for a new access token. Concurrent callers share
// one request, which runs detached from any single caller's cancellation; a caller
// whose ctx ends stops waiting without failing the others.
func (s *Session) Refresh(ctx context.Context) (Tokens, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.refreshGroup.DoChan("refresh", func() (any, error) {
		return s.refresh(shared)
	})

	select {
	case <-ctx.Done():
		return Tokens{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Tokens{}, res.Err
		}
		return res.Val.(Tokens), nil
	}
}

func (s *Session) refresh(ctx context.Context) (Tokens, error) {
	current := s.Tokens()
	if current.Refresh == "" {
		return Tokens{}, ErrNotLoggedIn
	}

	resp, err := s.postJSON(ctx, s.refreshPath, map[string]string{"refresh": current.Refresh})
	if err != nil {
		return Tokens{}, err
	}
	if !resp.OK() {
		return Tokens{}, fmt.Errorf("%w: %d %s", ErrRefreshFailed, resp.StatusCode, resp.Status)
	}

	var next Tokens
	if err := resp.JSON(&next); err != nil {
		return Tokens{}, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if next.Access == "" {
		return Tokens{}, fmt.Errorf("%w: no access token in response", ErrRefreshFailed)
	}
	// Rotation is optional on the server side.
	if next.Refresh == "" {
		next.Refresh = current.Refresh
	}

	if err := s.setTokens(next); err != nil {
		s.logger.Warn("failed to save refreshed tokens", logging.Error(err))
	}
	s.logger.Debug("access token refreshed")
	return next, nil
}

// Execute sends the request with the current access token. A 401 answer triggers
// one refresh and one replay; any other status is returned as is.
func (s *Session) Execute(ctx context.Context, url string, opts requester.Options) (*requester.Response, error) {
	token := s.Tokens().Access
	if token != "" && expiresSoon(token) {
		refreshed, err := s.Refresh(ctx)
		switch {
		case err == nil:
			token = refreshed.Access
		case isTransport(err):
			return nil, err
		default:
			s.logger.Debug("proactive refresh failed", logging.Error(err))
		}
	}

	resp, err := s.send(ctx, url, opts, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || s.Tokens().Refresh == "" {
		return resp, nil
	}

	// Another call may already have refreshed while this one was in flight.
	if current := s.Tokens().Access; current != "" && current != token {
		return s.send(ctx, url, opts, current)
	}

	refreshed, err := s.Refresh(ctx)
	if err != nil {
		if isTransport(err) {
			return nil, err
		}
		s.logger.Info("refresh after 401 failed", logging.URL(url), logging.Error(err))
		return resp, nil
	}
	return s.send(ctx, url, opts, refreshed.Access)
}

func (s *Session) send(ctx context.Context, url string, opts requester.Options, token string) (*requester.Response, error) {
	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = opts.Header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	httpResp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("request failed",
			logging.Method(opts.Method), logging.URL(url), logging.RequestID(requestID), logging.Error(err))
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	s.logger.Debug("request",
		logging.Method(opts.Method),
		logging.URL(url),
		logging.Status(httpResp.StatusCode),
		logging.Duration(time.Since(start).Milliseconds()),
		logging.RequestID(requestID),
	)

	return &requester.Response{
		StatusCode: httpResp.StatusCode,
		Status:     reasonPhrase(httpResp),
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

func (s *Session) postJSON(ctx context.Context, path string, payload any) (*requester.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return s.send(ctx, s.baseURL+"/"+path, requester.Options{
		Method: http.MethodPost,
		Header: header,
		Body:   body,
	}, "")
}

func (s *Session) setTokens(t Tokens) error {
	s.mu.Lock()
	s.tokens = t
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.SaveTokens(t); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	return nil
}

// ExpiresAt returns the expiry claim of a JWT without verifying its signature.
func ExpiresAt(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// expiresSoon reports whether a JWT access token is expired or about to be. Tokens
// that cannot be parsed are assumed valid; the server gets the final word.
func expiresSoon(token string) bool {
	exp, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	return time.Until(exp) < refreshLeeway
}

func isTransport(err error) bool {
	return !errors.Is(err, ErrNotLoggedIn) && !errors.Is(err, ErrRefreshFailed)
}

// reasonPhrase returns the status text without its numeric prefix, as sent by the
// server ("404 Not Found" -> "Not Found").
func reasonPhrase(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}
	return text
}
