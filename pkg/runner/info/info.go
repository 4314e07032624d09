package info

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/printers"
	"tableflip.dev/timebox/pkg/store"
)

type Info struct {
	Config  store.Config
	Service *app.Service
	Out     io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	pp := printers.PrettyPrint{Out: n.Out}

	if override := os.Getenv("TIMEBOX_CONFIG_PATH"); override != "" {
		pp.Message(fmt.Sprint("TIMEBOX_CONFIG_PATH found on env, using ", override))
	} else {
		pp.Message("TIMEBOX_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}

	pp.Message(fmt.Sprint("Config.path:   ", n.Config.BasePath()))
	pp.Message(fmt.Sprint("Config.export: ", n.Config.ExportPath()))
	pp.Message(fmt.Sprint("Config.server: ", n.Config.Server()))
	pp.NewLine()

	if n.Service == nil {
		return errors.New("failed to create persistence object")
	}

	dates, err := n.Service.Dates(ctx)
	if err != nil {
		return err
	}
	pp.List("Saved days", "day", dates)
	pp.Months(dates)
	return nil
}
