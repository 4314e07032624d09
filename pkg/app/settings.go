package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/timebox/pkg/remote"
	"tableflip.dev/timebox/pkg/settings"
	"tableflip.dev/timebox/pkg/timeutil"
)

// Settings returns the locally stored settings.
func (s *Service) Settings() (settings.Settings, error) {
	if s.Persistence == nil {
		return settings.Settings{}, ErrNoPersistence
	}
	return s.Persistence.LoadSettings()
}

// SaveSettings stores st locally and then pushes it to the service. The
// local write is what counts; the message says whether the service got it.
func (s *Service) SaveSettings(ctx context.Context, st settings.Settings) (string, error) {
	if s.Persistence == nil {
		return "", ErrNoPersistence
	}
	if !settings.ValidSlotDuration(st.DefaultSlotDuration) {
		return "", fmt.Errorf("app: slot duration %d not one of %v", st.DefaultSlotDuration, settings.SlotDurations)
	}
	if err := s.Persistence.SaveSettings(st); err != nil {
		return "", err
	}

	ack, err := s.Remote.UpdateSettings(ctx, st.Update())
	switch remote.Classify(err) {
	case remote.OutcomeSuccess:
		if ack.Message != "" {
			return ack.Message, nil
		}
		return "Settings saved", nil
	case remote.OutcomeNetworkFailure:
		return "Saved locally (offline)", nil
	default:
		s.Log.Info("remote settings update failed", "err", err)
		return "Saved locally", nil
	}
}

// RefreshSettings pulls the Telegram link state from the service. Other
// fields stay as the user last saved them here.
func (s *Service) RefreshSettings(ctx context.Context) (settings.Settings, error) {
	local, err := s.Settings()
	if err != nil {
		return local, err
	}
	st, err := s.Remote.Settings(ctx)
	if err != nil {
		return local, err
	}
	if local.TelegramLinked != st.TelegramLinked {
		local.TelegramLinked = st.TelegramLinked
		if err := s.Persistence.SaveSettings(local); err != nil {
			return local, err
		}
	}
	return local, nil
}

// SettingKeys lists the names accepted by SetSetting.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var settingSetters = map[string]func(*settings.Settings, string) error{
	"name": func(st *settings.Settings, v string) error {
		st.Name = strings.TrimSpace(v)
		return nil
	},
	"remind-before": boolSetter(func(st *settings.Settings) *bool { return &st.RemindBeforeActivity }),
	"remind-start":  boolSetter(func(st *settings.Settings) *bool { return &st.RemindOnStart }),
	"nudge":         boolSetter(func(st *settings.Settings) *bool { return &st.NudgeDuringActivity }),
	"congratulate":  boolSetter(func(st *settings.Settings) *bool { return &st.CongratulateOnFinish }),
	"slot": func(st *settings.Settings, v string) error {
		minutes, _, err := timeutil.ParseMinutes(v)
		if err != nil {
			return err
		}
		if !settings.ValidSlotDuration(minutes) {
			return fmt.Errorf("app: slot duration %d not one of %v", minutes, settings.SlotDurations)
		}
		st.DefaultSlotDuration = minutes
		return nil
	},
}

func boolSetter(field func(*settings.Settings) *bool) func(*settings.Settings, string) error {
	return func(st *settings.Settings, v string) error {
		b, err := settings.ParseSwitch(v)
		if err != nil {
			return fmt.Errorf("app: %q is not on or off", v)
		}
		*field(st) = b
		return nil
	}
}

// SetSetting changes one setting by name and saves.
func (s *Service) SetSetting(ctx context.Context, key, value string) (settings.Settings, string, error) {
	set, ok := settingSetters[key]
	if !ok {
		return settings.Settings{}, "", fmt.Errorf("%w %q, want one of %s", ErrUnknownSetting, key, strings.Join(SettingKeys(), ", "))
	}
	st, err := s.Settings()
	if err != nil {
		return st, "", err
	}
	if err := set(&st, value); err != nil {
		return st, "", err
	}
	msg, err := s.SaveSettings(ctx, st)
	return st, msg, err
}

// TelegramLinkCode asks the service for a code to link the Telegram bot.
func (s *Service) TelegramLinkCode(ctx context.Context) (remote.TelegramLink, error) {
	if err := s.requireLogin(); err != nil {
		return remote.TelegramLink{}, err
	}
	st, err := s.Settings()
	if err != nil {
		return remote.TelegramLink{}, err
	}
	if st.TelegramLinked {
		return remote.TelegramLink{}, ErrAlreadyLinked
	}
	return s.Remote.TelegramLinkCode(ctx)
}

// TelegramUnlink removes the Telegram link and records it locally.
func (s *Service) TelegramUnlink(ctx context.Context) (string, error) {
	if err := s.requireLogin(); err != nil {
		return "", err
	}
	ack, err := s.Remote.TelegramUnlink(ctx)
	if err != nil {
		return "", err
	}
	st, err := s.Settings()
	if err != nil {
		return "", err
	}
	st.TelegramLinked = false
	if err := s.Persistence.SaveSettings(st); err != nil {
		return "", err
	}
	if ack.Message == "" {
		return "Telegram unlinked", nil
	}
	return ack.Message, nil
}

func (s *Service) requireLogin() error {
	if s.Sessions != nil && s.Sessions.Session.Tokens().Empty() {
		return ErrNotLoggedIn
	}
	return nil
}
