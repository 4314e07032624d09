package day

import (
	"context"
	"fmt"
	"io"
	"sort"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/printers"
)

// Save writes the day locally and to the service.
type Save struct {
	Day
}

func (s *Save) Do(ctx context.Context) error {
	res, err := s.Service.Save(ctx, s.Date)
	if err != nil {
		return err
	}
	if s.JSON {
		return printers.JSON(s.Out, map[string]any{
			"path":      res.Path,
			"synced":    res.Synced,
			"loggedOut": res.LoggedOut,
			"message":   res.Message,
		})
	}
	pp := printers.PrettyPrint{Out: s.Out}
	pp.Message(res.Message)
	return nil
}

// Sync resends the days saved while offline.
type Sync struct {
	Service *app.Service
	JSON    bool
	Out     io.Writer
}

func (s *Sync) Do(ctx context.Context) error {
	res, err := s.Service.SyncPending(ctx)
	failed := make([]string, 0, len(res.Failed))
	for date, ferr := range res.Failed {
		failed = append(failed, fmt.Sprintf("%s: %v", date, ferr))
	}
	sort.Strings(failed)

	if s.JSON {
		if jerr := printers.JSON(s.Out, map[string]any{"synced": res.Synced, "failed": failed}); jerr != nil {
			return jerr
		}
		return err
	}
	pp := printers.PrettyPrint{Out: s.Out}
	pp.List("Synced", "day", res.Synced)
	if len(failed) > 0 {
		pp.List("Not synced", "day", failed)
	}
	return err
}
