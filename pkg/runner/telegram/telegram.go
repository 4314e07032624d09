// Package telegram holds the runners that link and unlink the Telegram bot.
package telegram

import (
	"context"
	"fmt"
	"io"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/printers"
)

// Link asks the service for a link code to send to the bot.
type Link struct {
	Service *app.Service
	JSON    bool
	Out     io.Writer
}

func (l *Link) Do(ctx context.Context) error {
	link, err := l.Service.TelegramLinkCode(ctx)
	if err != nil {
		return err
	}
	if l.JSON {
		return printers.JSON(l.Out, link)
	}
	pp := printers.PrettyPrint{Out: l.Out}
	pp.Title("Telegram")
	pp.Message(fmt.Sprintf("Send /link %s to the bot.", link.Code))
	if link.ExpiresAt != "" {
		pp.Notice("Expires " + link.ExpiresAt)
	}
	pp.Message(link.Message)
	return nil
}

// Unlink removes the Telegram link.
type Unlink struct {
	Service *app.Service
	JSON    bool
	Out     io.Writer
}

func (u *Unlink) Do(ctx context.Context) error {
	msg, err := u.Service.TelegramUnlink(ctx)
	if err != nil {
		return err
	}
	if u.JSON {
		return printers.JSON(u.Out, map[string]any{"message": msg})
	}
	pp := printers.PrettyPrint{Out: u.Out}
	pp.Message(msg)
	return nil
}
