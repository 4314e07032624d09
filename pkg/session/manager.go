package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// State is the authentication state of the client.
type State int

const (
	LoggedOut State = iota
	LoggingIn
	SigningUp
	LoggedIn
)

func (s State) String() string {
	switch s {
	case LoggingIn:
		return "logging in"
	case SigningUp:
		return "signing up"
	case LoggedIn:
		return "logged in"
	default:
		return "logged out"
	}
}

var (
	// ErrNoRefreshToken is returned by a refresh when no refresh token is held.
	ErrNoRefreshToken = errors.New("session: no refresh token")
	// ErrRefreshRejected is returned when the auth service refuses a refresh.
	ErrRefreshRejected = errors.New("session: refresh rejected")
	// ErrUnreachable matches errors caused by the auth service being
	// unreachable rather than refusing the credentials.
	ErrUnreachable = errors.New("session: auth service unreachable")
)

// Authenticator exchanges user credentials for tokens.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (Tokens, error)
	Signup(ctx context.Context, username, password string) (Tokens, error)
}

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Store persists tokens between runs.
type Store interface {
	LoadTokens(ctx context.Context) (Tokens, error)
	SaveTokens(ctx context.Context, t Tokens) error
}

// Result is the outcome of a login or signup. Message is suitable for
// showing to the user.
type Result struct {
	OK      bool
	Message string
}

// Manager drives the session lifecycle. It is the only writer of the
// Session besides the request pipeline clearing it on auth failure.
type Manager struct {
	Session   *Session
	Auth      Authenticator
	Refresher Refresher
	Store     Store
	Log       *slog.Logger

	mu       sync.Mutex
	state    State
	onLogout []func()
}

// NewManager wires a manager to sess. Token changes are persisted to store
// and a session cleared by anyone ends the logged in state.
func NewManager(sess *Session, auth Authenticator, refresher Refresher, store Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Manager{
		Session:   sess,
		Auth:      auth,
		Refresher: refresher,
		Store:     store,
		Log:       log,
	}
	sess.Watch(m.tokensChanged)
	return m
}

// OnLogout registers fn to run whenever the session ends, whether by an
// explicit logout or because credentials could not be recovered.
func (m *Manager) OnLogout(fn func()) {
	m.mu.Lock()
	m.onLogout = append(m.onLogout, fn)
	m.mu.Unlock()
}

// State reports the current authentication state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Restore loads persisted tokens. A stored session resumes as logged in.
func (m *Manager) Restore(ctx context.Context) error {
	if m.Store == nil {
		return nil
	}
	t, err := m.Store.LoadTokens(ctx)
	if err != nil {
		return fmt.Errorf("session: restore: %w", err)
	}
	if t.Empty() {
		return nil
	}
	m.Session.Set(t)
	m.setState(LoggedIn)
	return nil
}

// Login authenticates with username and password. It never fails with an
// error; the Result carries the outcome.
func (m *Manager) Login(ctx context.Context, username, password string) Result {
	return m.authenticate(ctx, LoggingIn, username, password, m.Auth.Login, "Login failed")
}

// Signup registers a new account and signs it in.
func (m *Manager) Signup(ctx context.Context, username, password string) Result {
	return m.authenticate(ctx, SigningUp, username, password, m.Auth.Signup, "Signup failed")
}

func (m *Manager) authenticate(ctx context.Context, transient State, username, password string,
	call func(context.Context, string, string) (Tokens, error), fallback string) Result {
	if strings.TrimSpace(username) == "" || password == "" {
		return Result{Message: "Username and password are required"}
	}

	m.setState(transient)
	t, err := call(ctx, username, password)
	if err == nil && t.AccessToken == "" {
		err = errors.New("no access token in response")
	}
	if err != nil {
		// A failed attempt leaves any session already held in place.
		m.setState(m.settledState())
		m.Log.Info("authentication failed", "state", transient, "err", err)
		msg := err.Error()
		if msg == "" {
			msg = fallback
		}
		return Result{Message: msg}
	}

	m.Session.Set(t)
	m.setState(LoggedIn)
	return Result{OK: true, Message: "Signed in as " + username}
}

// Logout drops the credentials and resets every logout subscriber.
func (m *Manager) Logout(ctx context.Context) {
	if !m.Session.Clear() {
		m.loggedOut()
	}
}

// RefreshAccessToken exchanges the refresh token for a new access token. On
// success only the access token changes. A rejected or missing refresh
// token clears the session; an unreachable service leaves it intact.
func (m *Manager) RefreshAccessToken(ctx context.Context) (string, error) {
	refresh := m.Session.RefreshToken()
	if refresh == "" {
		m.Session.Clear()
		return "", ErrNoRefreshToken
	}

	m.Log.Debug("refreshing access token")
	access, err := m.Refresher.Refresh(ctx, refresh)
	if err == nil && access == "" {
		err = errors.New("empty access token")
	}
	if err != nil {
		if errors.Is(err, ErrUnreachable) {
			m.Log.Info("token refresh unreachable, keeping session", "err", err)
			return "", err
		}
		m.Log.Info("token refresh rejected, clearing session", "err", err)
		m.Session.Clear()
		return "", fmt.Errorf("%w: %v", ErrRefreshRejected, err)
	}

	m.Session.SetAccessToken(access)
	return access, nil
}

// settledState is the state implied by the tokens held.
func (m *Manager) settledState() State {
	if m.Session.Tokens().Empty() {
		return LoggedOut
	}
	return LoggedIn
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) tokensChanged(t Tokens) {
	if m.Store != nil {
		if err := m.Store.SaveTokens(context.Background(), t); err != nil {
			m.Log.Error("persist tokens", "err", err)
		}
	}
	if t.Empty() {
		m.loggedOut()
	}
}

func (m *Manager) loggedOut() {
	m.mu.Lock()
	m.state = LoggedOut
	hooks := append([]func(){}, m.onLogout...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
