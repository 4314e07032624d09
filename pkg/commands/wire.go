package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/prompt"
	"tableflip.dev/timebox/pkg/remote"
	"tableflip.dev/timebox/pkg/runner/day"
	"tableflip.dev/timebox/pkg/session"
	"tableflip.dev/timebox/pkg/store"
)

// env is everything a command runs against.
type env struct {
	Config  store.Config
	Service *app.Service
	Log     *slog.Logger
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// load reads the config and wires persistence, the remote client and the
// session around an app service. A stored session is resumed.
func load(ctx context.Context) (*env, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel()
	if oo.LogLevel != "" {
		level = oo.LogLevel
	}
	log := newLogger(level)

	p, err := store.Load(cfg, log)
	if err != nil {
		return nil, err
	}
	sess := session.New()
	client, err := remote.NewClient(cfg.Server(), cfg.Timeout(), sess, log.With("component", "remote"))
	if err != nil {
		return nil, err
	}
	m := session.NewManager(sess, client, client, p, log.With("component", "session"))
	client.SetRefresher(m)
	if err := m.Restore(ctx); err != nil {
		log.Warn("could not restore session", "err", err)
	}

	return &env{
		Config:  cfg,
		Service: app.New(p, client, m, log),
		Log:     log,
	}, nil
}

// day builds the shared part of a day runner for the --date flag.
func (e *env) day(cmd *cobra.Command, showID bool) (day.Day, error) {
	date, err := do.Resolve(time.Now())
	if err != nil {
		return day.Day{}, err
	}
	return day.Day{
		Service: e.Service,
		Date:    date,
		JSON:    oo.JSON,
		ShowID:  showID,
		Out:     cmd.OutOrStdout(),
	}, nil
}

func (e *env) prompter(cmd *cobra.Command) prompt.Prompter {
	return prompt.Prompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
}

// blockIndex reads the block number from args, or asks for it when
// interactive. It returns the remaining args.
func (e *env) blockIndex(cmd *cobra.Command, d day.Day, args []string, interactive bool) (int, []string, error) {
	if interactive {
		current, err := e.Service.Open(cmd.Context(), d.Date)
		if err != nil {
			return 0, nil, err
		}
		i, err := e.prompter(cmd).Block("Block", current.State.Blocks)
		return i, args, err
	}
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("a block number is required")
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, nil, fmt.Errorf("block number %q is not a number", args[0])
	}
	return i, args[1:], nil
}
