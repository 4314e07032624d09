package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/session"
	"tableflip.dev/timebox/pkg/settings"
)

// Schedules is the saved-day contract.
type Schedules interface {
	// SaveLocal writes s and returns the file it was written to.
	SaveLocal(s *schedule.Schedule) (string, error)
	// LoadLocal reads the day saved for date, nil when there is none.
	LoadLocal(date string) (*schedule.Schedule, error)
	// Export writes s to the export directory for use outside the app and
	// returns that directory.
	Export(s *schedule.Schedule) (string, error)
	// Dates lists the days saved locally, oldest first.
	Dates(ctx context.Context) []string
}

// Drafts holds the day being edited between invocations.
type Drafts interface {
	LoadDraft(date string) (*Draft, error)
	SaveDraft(d *Draft) error
	DeleteDraft(date string) error
	ClearDrafts(ctx context.Context) error
}

// Pending tracks days saved locally that the service has not received.
type Pending interface {
	MarkPending(date string) error
	ClearPending(date string) error
	PendingDates(ctx context.Context) []string
}

// SettingsStore holds the user's preferences.
type SettingsStore interface {
	LoadSettings() (settings.Settings, error)
	SaveSettings(s settings.Settings) error
}

// Persistence is everything kept on disk.
type Persistence interface {
	Schedules
	Drafts
	Pending
	SettingsStore
	session.Store
	Watch(ctx context.Context) (<-chan Event, error)
}

// Draft is an edited day that has not been saved yet.
type Draft struct {
	Schedule *schedule.Schedule `json:"schedule"`
	Events   []schedule.Event   `json:"events,omitempty"`
	// Notice is the load notice shown when the draft was created.
	Notice string `json:"notice,omitempty"`
}

const (
	kindSchedule = "schedule"
	kindDraft    = "draft"
	kindPending  = "pending"

	keySettings = "settings-user"
	keyTokens   = "session-tokens"

	fileExt = ".json"
)

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config, log *slog.Logger) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	return &persistence{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
			FilePerm:          0o600,
		}),
		basePath:   basePath,
		exportPath: cfg.ExportPath(),
		log:        log,
	}, nil
}

type persistence struct {
	d          *diskv.Diskv
	basePath   string
	exportPath string
	log        *slog.Logger
}

func (p *persistence) SaveLocal(s *schedule.Schedule) (string, error) {
	if _, err := schedule.ParseDate(s.Date); err != nil {
		return "", fmt.Errorf("store: schedule date %q: %w", s.Date, err)
	}
	key := dateKey(kindSchedule, s.Date)
	if err := p.writeJSON(key, s); err != nil {
		return "", fmt.Errorf("store: save schedule %s: %w", s.Date, err)
	}
	return p.pathFor(key), nil
}

func (p *persistence) LoadLocal(date string) (*schedule.Schedule, error) {
	var s schedule.Schedule
	ok, err := p.readJSON(dateKey(kindSchedule, date), &s)
	if err != nil {
		return nil, fmt.Errorf("store: load schedule %s: %w", date, err)
	}
	if !ok {
		return nil, nil
	}
	if err := schedule.Validate(s.Blocks); err != nil {
		p.log.Warn("repairing stored schedule", "date", date, "err", err)
		s.Blocks = schedule.Normalize(s.Blocks)
	}
	return &s, nil
}

func (p *persistence) Dates(ctx context.Context) []string {
	return p.dates(ctx, kindSchedule)
}

func (p *persistence) LoadDraft(date string) (*Draft, error) {
	var d Draft
	ok, err := p.readJSON(dateKey(kindDraft, date), &d)
	if err != nil {
		return nil, fmt.Errorf("store: load draft %s: %w", date, err)
	}
	if !ok || d.Schedule == nil {
		return nil, nil
	}
	return &d, nil
}

func (p *persistence) SaveDraft(d *Draft) error {
	if d == nil || d.Schedule == nil {
		return errors.New("store: empty draft")
	}
	if err := p.writeJSON(dateKey(kindDraft, d.Schedule.Date), d); err != nil {
		return fmt.Errorf("store: save draft %s: %w", d.Schedule.Date, err)
	}
	return nil
}

func (p *persistence) DeleteDraft(date string) error {
	return p.erase(dateKey(kindDraft, date))
}

func (p *persistence) ClearDrafts(ctx context.Context) error {
	var errs []error
	for _, date := range p.dates(ctx, kindDraft) {
		if err := p.DeleteDraft(date); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *persistence) MarkPending(date string) error {
	return p.d.Write(dateKey(kindPending, date), []byte(date))
}

func (p *persistence) ClearPending(date string) error {
	return p.erase(dateKey(kindPending, date))
}

func (p *persistence) PendingDates(ctx context.Context) []string {
	return p.dates(ctx, kindPending)
}

func (p *persistence) LoadSettings() (settings.Settings, error) {
	s := settings.Defaults()
	if _, err := p.readJSON(keySettings, &s); err != nil {
		return settings.Defaults(), fmt.Errorf("store: load settings: %w", err)
	}
	return s, nil
}

func (p *persistence) SaveSettings(s settings.Settings) error {
	if err := p.writeJSON(keySettings, s); err != nil {
		return fmt.Errorf("store: save settings: %w", err)
	}
	return nil
}

func (p *persistence) LoadTokens(_ context.Context) (session.Tokens, error) {
	var t session.Tokens
	if _, err := p.readJSON(keyTokens, &t); err != nil {
		return session.Tokens{}, fmt.Errorf("store: load tokens: %w", err)
	}
	return t, nil
}

func (p *persistence) SaveTokens(_ context.Context, t session.Tokens) error {
	if t.Empty() {
		return p.erase(keyTokens)
	}
	if err := p.writeJSON(keyTokens, t); err != nil {
		return fmt.Errorf("store: save tokens: %w", err)
	}
	return nil
}

func (p *persistence) writeJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.d.Write(key, data)
}

// readJSON decodes key into v. A missing key leaves v untouched and reports
// false.
func (p *persistence) readJSON(key string, v any) (bool, error) {
	if !p.d.Has(key) {
		return false, nil
	}
	data, err := p.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func (p *persistence) erase(key string) error {
	if !p.d.Has(key) {
		return nil
	}
	if err := p.d.Erase(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: erase %s: %w", key, err)
	}
	return nil
}

func (p *persistence) dates(ctx context.Context, kind string) []string {
	prefix := kind + "-"
	all := make([]string, 0)
	for key := range p.d.KeysPrefix(prefix, ctx.Done()) {
		date := strings.TrimPrefix(key, prefix)
		if _, err := schedule.ParseDate(date); err != nil {
			p.log.Warn("skipping unexpected key", "key", key)
			continue
		}
		all = append(all, date)
	}
	sort.Strings(all)
	return all
}

func (p *persistence) pathFor(key string) string {
	pk := keyToPathTransform(key)
	return filepath.Join(append(append([]string{p.basePath}, pk.Path...), pk.FileName)...)
}

// keyToPathTransform maps kind-YYYY-MM-DD to kind/YYYY/MM/DD.json.
func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1] + fileExt,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	name := strings.TrimSuffix(pathKey.FileName, fileExt)
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), name)
}

// dateKey makes `kind-date`.
func dateKey(kind, date string) string {
	return fmt.Sprintf("%s-%s", kind, date)
}
