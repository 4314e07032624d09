package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"tableflip.dev/timebox/pkg/reconcile"
	"tableflip.dev/timebox/pkg/remote"
	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/session"
	"tableflip.dev/timebox/pkg/settings"
	"tableflip.dev/timebox/pkg/store"
)

// Remote is the part of the service API the app uses.
type Remote interface {
	ScheduleByDate(ctx context.Context, date string) (*schedule.Schedule, error)
	SaveSchedule(ctx context.Context, s *schedule.Schedule) (remote.APIResponse, error)
	Settings(ctx context.Context) (settings.Settings, error)
	UpdateSettings(ctx context.Context, u settings.Update) (remote.APIResponse, error)
	TelegramLinkCode(ctx context.Context) (remote.TelegramLink, error)
	TelegramUnlink(ctx context.Context) (remote.APIResponse, error)
}

// Service provides high-level operations over days, settings and the
// account. It wraps persistence, the remote API and the schedule engine so
// the CLI and the MCP server share logic.
type Service struct {
	Persistence store.Persistence
	Remote      Remote
	Sessions    *session.Manager
	Loader      *reconcile.Loader
	Now         func() time.Time
	NewID       func() string
	Log         *slog.Logger

	days dayLocks
}

var (
	ErrNoPersistence  = errors.New("app: no persistence configured")
	ErrAlreadyLinked  = errors.New("app: Telegram is already linked to your account")
	ErrNotLoggedIn    = errors.New("app: not logged in")
	ErrNothingToSave  = errors.New("app: nothing to save")
	ErrUnknownSetting = errors.New("app: unknown setting")
)

// New wires a service. The session manager's logout hook resets local
// settings and drafts.
func New(p store.Persistence, r Remote, m *session.Manager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		Persistence: p,
		Remote:      r,
		Sessions:    m,
		Log:         log,
	}
	s.Loader = &reconcile.Loader{
		Remote:          r,
		Local:           p,
		DefaultDuration: s.slotDuration,
		Now:             s.now,
		NewID:           s.newID,
		Log:             log,
	}
	if m != nil {
		m.OnLogout(s.reset)
	}
	return s
}

// Day is a day as the user sees it.
type Day struct {
	State     schedule.State
	CreatedAt schedule.Timestamp
	Notice    string
	Source    reconcile.Source
}

// Open returns the day being edited for date. An unsaved draft wins over
// the saved copy; otherwise the day is loaded and kept as the new draft.
func (s *Service) Open(ctx context.Context, date string) (Day, error) {
	defer s.days.lock(date)()
	return s.open(ctx, date)
}

func (s *Service) open(ctx context.Context, date string) (Day, error) {
	if s.Persistence == nil {
		return Day{}, ErrNoPersistence
	}
	if _, err := schedule.ParseDate(date); err != nil {
		return Day{}, fmt.Errorf("app: bad date %q: %w", date, err)
	}
	d, err := s.Persistence.LoadDraft(date)
	if err != nil {
		s.Log.Warn("ignoring unreadable draft", "date", date, "err", err)
	}
	if d != nil {
		return dayFromDraft(d), nil
	}
	return s.load(ctx, date)
}

// Reload drops the draft for date and loads it again.
func (s *Service) Reload(ctx context.Context, date string) (Day, error) {
	if s.Persistence == nil {
		return Day{}, ErrNoPersistence
	}
	defer s.days.lock(date)()
	if err := s.Persistence.DeleteDraft(date); err != nil {
		return Day{}, err
	}
	return s.load(ctx, date)
}

func (s *Service) load(ctx context.Context, date string) (Day, error) {
	ld, err := s.Loader.Load(ctx, date)
	if err != nil {
		return Day{}, err
	}
	var day Day
	err = s.Loader.Commit(ld, func(ld reconcile.Loaded) {
		day = Day{
			State:     s.engine().Adopt(date, ld.Blocks),
			CreatedAt: ld.CreatedAt,
			Notice:    ld.Notice,
			Source:    ld.Source,
		}
	})
	if err != nil {
		return Day{}, err
	}
	if err := s.saveDraft(day); err != nil {
		return Day{}, err
	}
	return day, nil
}

// Edit applies fn to the day for date and keeps the result as the draft.
// A failing fn leaves the draft untouched. Edits of the same date apply one
// at a time.
func (s *Service) Edit(ctx context.Context, date string, fn func(*schedule.Engine, schedule.State) (schedule.State, error)) (Day, error) {
	defer s.days.lock(date)()
	day, err := s.open(ctx, date)
	if err != nil {
		return Day{}, err
	}
	next, err := fn(s.engine(), day.State)
	if err != nil {
		return day, err
	}
	day.State = next
	if err := s.saveDraft(day); err != nil {
		return Day{}, err
	}
	return day, nil
}

// SaveResult reports where a save landed.
type SaveResult struct {
	Path    string
	Synced  bool
	Message string
	// LoggedOut is set when the save found the session expired.
	LoggedOut bool
}

// Save writes the labelled blocks of the day locally, exports them, and
// sends them to the service. Only the local write can fail the save; a
// remote failure queues the day for a later sync.
func (s *Service) Save(ctx context.Context, date string) (SaveResult, error) {
	defer s.days.lock(date)()
	day, err := s.open(ctx, date)
	if err != nil {
		return SaveResult{}, err
	}
	filled := schedule.Filled(day.State.Blocks)
	if len(filled) == 0 {
		return SaveResult{}, ErrNothingToSave
	}

	sch := &schedule.Schedule{Date: date, CreatedAt: day.CreatedAt, Blocks: filled}
	sch.Touch(s.now())

	path, err := s.Persistence.SaveLocal(sch)
	if err != nil {
		return SaveResult{}, err
	}
	if dir, err := s.Persistence.Export(sch); err != nil {
		s.Log.Warn("export failed", "date", date, "err", err)
	} else {
		path = filepath.Join(dir, fmt.Sprintf("schedule_%s.json", date))
	}

	res := SaveResult{Path: path}
	_, err = s.Remote.SaveSchedule(ctx, sch)
	switch remote.Classify(err) {
	case remote.OutcomeSuccess:
		res.Synced = true
		res.Message = path + "\nSynced to server"
		if err := s.Persistence.ClearPending(date); err != nil {
			s.Log.Warn("clear pending", "date", date, "err", err)
		}
	case remote.OutcomeAuthFailure:
		res.LoggedOut = true
		res.Message = path + "\n(Session expired - log in to sync)"
		s.markPending(date)
	default:
		s.Log.Info("remote save failed", "date", date, "err", err)
		res.Message = path + "\n(Offline - will sync later)"
		s.markPending(date)
	}

	if !res.LoggedOut {
		// The saved day keeps its creation time on later saves.
		day.CreatedAt = sch.CreatedAt
		if err := s.saveDraft(day); err != nil {
			s.Log.Warn("refresh draft", "date", date, "err", err)
		}
	}
	return res, nil
}

// SyncResult reports the outcome of a pending sync.
type SyncResult struct {
	Synced []string
	Failed map[string]error
}

// SyncPending resends every day that was saved while offline. It stops at
// the first auth failure since nothing after it can succeed.
func (s *Service) SyncPending(ctx context.Context) (SyncResult, error) {
	if s.Persistence == nil {
		return SyncResult{}, ErrNoPersistence
	}
	res := SyncResult{Failed: make(map[string]error)}
	for _, date := range s.Persistence.PendingDates(ctx) {
		sch, err := s.Persistence.LoadLocal(date)
		if err != nil || sch == nil {
			if err == nil {
				err = errors.New("no local copy")
			}
			res.Failed[date] = err
			continue
		}
		if _, err := s.Remote.SaveSchedule(ctx, sch); err != nil {
			res.Failed[date] = err
			if remote.Classify(err) == remote.OutcomeAuthFailure {
				return res, err
			}
			continue
		}
		if err := s.Persistence.ClearPending(date); err != nil {
			s.Log.Warn("clear pending", "date", date, "err", err)
		}
		res.Synced = append(res.Synced, date)
	}
	s.Log.Info("pending sync finished", "synced", len(res.Synced), "failed", len(res.Failed))
	return res, nil
}

// Dates lists the days saved locally.
func (s *Service) Dates(ctx context.Context) ([]string, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.Dates(ctx), nil
}

// Watch subscribes to persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.Watch(ctx)
}

func (s *Service) markPending(date string) {
	if err := s.Persistence.MarkPending(date); err != nil {
		s.Log.Warn("mark pending", "date", date, "err", err)
	}
}

func (s *Service) saveDraft(day Day) error {
	return s.Persistence.SaveDraft(&store.Draft{
		Schedule: &schedule.Schedule{
			Date:      day.State.Date,
			CreatedAt: day.CreatedAt,
			Blocks:    day.State.Blocks,
		},
		Events: day.State.Events,
		Notice: day.Notice,
	})
}

func dayFromDraft(d *store.Draft) Day {
	return Day{
		State: schedule.State{
			Date:   d.Schedule.Date,
			Blocks: d.Schedule.Blocks,
			Events: d.Events,
		},
		CreatedAt: d.Schedule.CreatedAt,
		Notice:    d.Notice,
		Source:    "draft",
	}
}

// reset runs on logout.
func (s *Service) reset() {
	if s.Persistence == nil {
		return
	}
	if err := s.Persistence.SaveSettings(settings.Defaults()); err != nil {
		s.Log.Warn("reset settings", "err", err)
	}
	if err := s.Persistence.ClearDrafts(context.Background()); err != nil {
		s.Log.Warn("clear drafts", "err", err)
	}
}

func (s *Service) engine() *schedule.Engine {
	return &schedule.Engine{
		DefaultDuration: s.slotDuration(),
		Now:             s.now,
		NewID:           s.newID,
	}
}

func (s *Service) slotDuration() int {
	if s.Persistence == nil {
		return schedule.DefaultDuration
	}
	st, err := s.Persistence.LoadSettings()
	if err != nil {
		s.Log.Warn("load settings", "err", err)
	}
	return st.SlotDuration()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return schedule.NewID()
}
