package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/session"
	"tableflip.dev/timebox/pkg/settings"
)

// APIResponse is the generic acknowledgement returned by mutating endpoints.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// TelegramLink is a one-time code the user sends to the bot to link their
// account.
type TelegramLink struct {
	Code      string `json:"code"`
	ExpiresAt string `json:"expiresAt"`
	Message   string `json:"message"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Message      string `json:"message,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type saveScheduleRequest struct {
	Schedule *schedule.Schedule `json:"schedule"`
}

// Client is the typed API of the schedule service.
type Client struct {
	Pipeline *Pipeline
}

// NewClient builds a client for the service at baseURL acting for sess.
// The token refresher is attached separately with SetRefresher since it
// usually depends on the client itself.
func NewClient(baseURL string, timeout time.Duration, sess *session.Session, log *slog.Logger) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("remote: base url %q must be absolute", baseURL)
	}
	return &Client{Pipeline: &Pipeline{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: u,
		Session: sess,
		Log:     log,
	}}, nil
}

// SetRefresher installs the component that renews access tokens.
func (c *Client) SetRefresher(r TokenRefresher) {
	c.Pipeline.Refresher = r
}

// Login implements session.Authenticator.
func (c *Client) Login(ctx context.Context, username, password string) (session.Tokens, error) {
	return c.authenticate(ctx, "auth/login", username, password)
}

// Signup implements session.Authenticator.
func (c *Client) Signup(ctx context.Context, username, password string) (session.Tokens, error) {
	return c.authenticate(ctx, "auth/signup", username, password)
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) (session.Tokens, error) {
	var out authResponse
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   credentials{Username: username, Password: password},
		Public: true,
	}, &out)
	if err != nil {
		return session.Tokens{}, err
	}
	return session.Tokens{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

// Refresh implements session.Refresher.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var out refreshResponse
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "auth/refresh",
		Body:   refreshRequest{RefreshToken: refreshToken},
		Public: true,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Settings fetches the user's settings.
func (c *Client) Settings(ctx context.Context) (settings.Settings, error) {
	out := settings.Defaults()
	err := c.call(ctx, Request{Method: http.MethodGet, Path: "user/settings"}, &out)
	return out, err
}

// UpdateSettings stores the user's settings remotely.
func (c *Client) UpdateSettings(ctx context.Context, u settings.Update) (APIResponse, error) {
	var out APIResponse
	err := c.call(ctx, Request{Method: http.MethodPut, Path: "user/settings", Body: u}, &out)
	return out, err
}

// SaveSchedule uploads a day's schedule.
func (c *Client) SaveSchedule(ctx context.Context, s *schedule.Schedule) (APIResponse, error) {
	var out APIResponse
	err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "schedule/save",
		Body:   saveScheduleRequest{Schedule: s},
	}, &out)
	return out, err
}

// ScheduleByDate downloads the schedule saved for date. A day with nothing
// saved returns ErrNotFound.
func (c *Client) ScheduleByDate(ctx context.Context, date string) (*schedule.Schedule, error) {
	var out schedule.Schedule
	err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "schedule/by-date/" + url.PathEscape(date),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TelegramLinkCode requests a code for linking the Telegram bot.
func (c *Client) TelegramLinkCode(ctx context.Context) (TelegramLink, error) {
	var out TelegramLink
	err := c.call(ctx, Request{Method: http.MethodPost, Path: "telegram/link-code"}, &out)
	return out, err
}

// TelegramUnlink removes the Telegram link from the account.
func (c *Client) TelegramUnlink(ctx context.Context) (APIResponse, error) {
	var out APIResponse
	err := c.call(ctx, Request{Method: http.MethodPost, Path: "telegram/unlink"}, &out)
	return out, err
}

func (c *Client) call(ctx context.Context, req Request, out any) error {
	resp, err := c.Pipeline.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("remote: decode %s: %w", req.Path, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}
