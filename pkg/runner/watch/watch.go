// Package watch prints local store changes as they happen.
package watch

import (
	"context"
	"fmt"
	"io"
	"time"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/printers"
	"tableflip.dev/timebox/pkg/store"
)

type Watch struct {
	Service *app.Service
	JSON    bool
	Out     io.Writer
	// Now stamps each line; defaults to time.Now.
	Now func() time.Time
}

func (w *Watch) Do(ctx context.Context) error {
	events, err := w.Service.Watch(ctx)
	if err != nil {
		return err
	}
	now := w.Now
	if now == nil {
		now = time.Now
	}
	pp := printers.PrettyPrint{Out: w.Out}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := w.print(pp, now(), ev); err != nil {
				return err
			}
		}
	}
}

func (w *Watch) print(pp printers.PrettyPrint, at time.Time, ev store.Event) error {
	if w.JSON {
		return printers.JSON(w.Out, map[string]any{
			"at":   at.Format(time.RFC3339),
			"type": ev.Type.String(),
			"date": ev.Date,
		})
	}
	line := fmt.Sprintf("%s %s", at.Format("15:04:05"), ev.Type)
	if ev.Date != "" {
		line += " " + ev.Date
	}
	pp.Message(line)
	return nil
}
