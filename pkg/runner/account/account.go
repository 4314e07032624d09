// Package account holds the login, signup, logout and status runners.
package account

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/printers"
	"tableflip.dev/timebox/pkg/prompt"
	"tableflip.dev/timebox/pkg/session"
	"tableflip.dev/timebox/pkg/store"
)

// ErrRejected is returned when the service refuses the credentials.
var ErrRejected = errors.New("account: rejected")

// Login signs in, or registers when Signup is set. Missing credentials are
// prompted for.
type Login struct {
	Service  *app.Service
	Signup   bool
	Username string
	Password string
	Prompter prompt.Prompter
	JSON     bool
	Out      io.Writer
}

func (l *Login) Do(ctx context.Context) error {
	user, pass, err := l.Prompter.Credentials(l.Username, l.Password)
	if err != nil {
		return err
	}

	m := l.Service.Sessions
	var res session.Result
	if l.Signup {
		res = m.Signup(ctx, user, pass)
	} else {
		res = m.Login(ctx, user, pass)
	}
	if !res.OK {
		return fmt.Errorf("%w: %s", ErrRejected, res.Message)
	}

	// A fresh session can push what was saved while logged out.
	if _, err := l.Service.RefreshSettings(ctx); err != nil {
		l.Service.Log.Info("refresh settings after login", "err", err)
	}
	synced, err := l.Service.SyncPending(ctx)
	if err != nil {
		l.Service.Log.Info("sync after login", "err", err)
	}

	if l.JSON {
		return printers.JSON(l.Out, map[string]any{
			"message": res.Message,
			"synced":  synced.Synced,
		})
	}
	pp := printers.PrettyPrint{Out: l.Out}
	pp.Message(res.Message)
	if n := len(synced.Synced); n > 0 {
		pp.Message(fmt.Sprintf("Synced %d pending day(s)", n))
	}
	return nil
}

// Logout ends the session and resets local settings and drafts.
type Logout struct {
	Service *app.Service
	JSON    bool
	Out     io.Writer
}

func (l *Logout) Do(ctx context.Context) error {
	l.Service.Sessions.Logout(ctx)
	if l.JSON {
		return printers.JSON(l.Out, map[string]any{"message": "Logged out"})
	}
	pp := printers.PrettyPrint{Out: l.Out}
	pp.Message("Logged out")
	return nil
}

// Status reports the session and what is waiting to sync.
type Status struct {
	Service *app.Service
	Config  store.Config
	JSON    bool
	Out     io.Writer
}

func (s *Status) Do(ctx context.Context) error {
	state := s.Service.Sessions.State()
	pending := s.Service.Persistence.PendingDates(ctx)
	st, err := s.Service.Settings()
	if err != nil {
		return err
	}

	if s.JSON {
		return printers.JSON(s.Out, map[string]any{
			"state":   state.String(),
			"server":  s.Config.Server(),
			"name":    st.Name,
			"pending": pending,
		})
	}
	pp := printers.PrettyPrint{Out: s.Out}
	pp.Title("Status")
	pp.Message(fmt.Sprintf("Session: %s", state))
	pp.Message(fmt.Sprintf("Server:  %s", s.Config.Server()))
	if st.Name != "" {
		pp.Message(fmt.Sprintf("Name:    %s", st.Name))
	}
	pp.NewLine()
	pp.List("Waiting to sync", "day", pending)
	return nil
}
