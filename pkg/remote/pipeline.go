// Package remote talks to the schedule service. Every call flows through a
// Pipeline that attaches the bearer token and recovers from an expired
// access token by refreshing it once.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/sync/singleflight"

	"tableflip.dev/timebox/pkg/session"
)

// RefreshedHeader marks a request that is being retried after a token
// refresh. A 401 on a marked request is final.
const RefreshedHeader = "Token-Refreshed"

// TokenRefresher mints a new access token from the session's refresh token.
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context) (string, error)
}

// Request describes one logical call. Public requests never carry the
// bearer token and are not retried on 401.
type Request struct {
	Method string
	Path   string
	Body   any
	Public bool
}

// Pipeline sends requests on behalf of a session.
type Pipeline struct {
	HTTP      *http.Client
	BaseURL   *url.URL
	Session   *session.Session
	Refresher TokenRefresher
	Log       *slog.Logger

	refresh singleflight.Group
}

// Do sends req and returns the response. The caller closes the body.
//
// A protected request answered with 401 triggers at most one token refresh
// shared by every concurrent caller, then a single retry. Transport errors
// are returned as *NetworkError and never touch the session.
func (p *Pipeline) Do(ctx context.Context, req Request) (*http.Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	resp, sentWith, err := p.send(ctx, req, body, "", false)
	if err != nil {
		return nil, err
	}
	if req.Public || resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	discard(resp)

	token, err := p.refreshAfter(ctx, sentWith)
	if err != nil {
		return nil, err
	}

	p.log().Debug("retrying after token refresh", "method", req.Method, "path", req.Path)
	resp, _, err = p.send(ctx, req, body, token, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		discard(resp)
		p.Session.Clear()
		p.log().Info("request unauthorized after refresh, session cleared", "path", req.Path)
		return nil, &AuthError{Reason: "unauthorized after token refresh"}
	}
	return resp, nil
}

// refreshAfter returns an access token newer than stale. Concurrent callers
// share one refresh; a caller arriving after another already replaced the
// token reuses it without refreshing.
func (p *Pipeline) refreshAfter(ctx context.Context, stale string) (string, error) {
	if p.Session.RefreshToken() == "" {
		p.Session.Clear()
		return "", &AuthError{Reason: "no refresh token"}
	}
	if p.Refresher == nil {
		p.Session.Clear()
		return "", &AuthError{Reason: "token refresh unavailable"}
	}

	v, err, shared := p.refresh.Do("refresh", func() (any, error) {
		if cur := p.Session.AccessToken(); cur != "" && cur != stale {
			return cur, nil
		}
		return p.Refresher.RefreshAccessToken(context.WithoutCancel(ctx))
	})
	if err != nil {
		var nerr *NetworkError
		if asNetwork(err, &nerr) {
			return "", nerr
		}
		p.Session.Clear()
		return "", &AuthError{Reason: "token refresh failed", Err: err}
	}
	p.log().Debug("access token refreshed", "shared", shared)
	return v.(string), nil
}

func (p *Pipeline) send(ctx context.Context, req Request, body []byte, token string, retried bool) (*http.Response, string, error) {
	u, err := p.resolve(req.Path)
	if err != nil {
		return nil, "", err
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, u, rd)
	if err != nil {
		return nil, "", fmt.Errorf("remote: build request: %w", err)
	}
	hreq.Header.Set("Accept", "application/json")
	if body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}

	if !req.Public {
		if token == "" {
			token = p.Session.AccessToken()
		}
		if token != "" {
			hreq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if retried {
		hreq.Header.Set(RefreshedHeader, "true")
	}

	resp, err := p.client().Do(hreq)
	if err != nil {
		return nil, token, &NetworkError{Op: req.Method + " " + req.Path, Err: err}
	}
	return resp, token, nil
}

func (p *Pipeline) resolve(path string) (string, error) {
	if p.BaseURL == nil {
		return "", fmt.Errorf("remote: no base url configured")
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("remote: bad path %q: %w", path, err)
	}
	return p.BaseURL.ResolveReference(ref).String(), nil
}

func (p *Pipeline) client() *http.Client {
	if p.HTTP != nil {
		return p.HTTP
	}
	return http.DefaultClient
}

func (p *Pipeline) log() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func encodeBody(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("remote: encode body: %w", err)
	}
	return b, nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
