// Package settings holds the runners that show and change preferences.
package settings

import (
	"context"
	"io"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/printers"
	"tableflip.dev/timebox/pkg/remote"
)

// Get prints the settings. With Remote set the Telegram link state is
// refreshed from the service first.
type Get struct {
	Service *app.Service
	Remote  bool
	JSON    bool
	Out     io.Writer
}

func (g *Get) Do(ctx context.Context) error {
	st, err := g.Service.Settings()
	if err != nil {
		return err
	}
	notice := ""
	if g.Remote {
		fresh, err := g.Service.RefreshSettings(ctx)
		switch remote.Classify(err) {
		case remote.OutcomeSuccess:
			st = fresh
		case remote.OutcomeNetworkFailure:
			notice = "Offline - showing local settings"
		default:
			return err
		}
	}

	if g.JSON {
		return printers.JSON(g.Out, st)
	}
	pp := printers.PrettyPrint{Out: g.Out}
	pp.Notice(notice)
	pp.Settings(st)
	return nil
}

// Set changes one setting by name.
type Set struct {
	Service *app.Service
	Key     string
	Value   string
	JSON    bool
	Out     io.Writer
}

func (s *Set) Do(ctx context.Context) error {
	st, msg, err := s.Service.SetSetting(ctx, s.Key, s.Value)
	if err != nil {
		return err
	}
	if s.JSON {
		return printers.JSON(s.Out, map[string]any{"message": msg, "settings": st})
	}
	pp := printers.PrettyPrint{Out: s.Out}
	pp.Message(msg)
	pp.NewLine()
	pp.Settings(st)
	return nil
}
