package app

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/timebox/pkg/schedule"
)

// ErrSameDay is returned when a day is carried over onto itself.
var ErrSameDay = errors.New("app: source and target day are the same")

// CarryOver starts the day for to with the labelled blocks of from, at the
// same times and with new ids. Unsaved edits for to are replaced; nothing
// is saved until Save.
func (s *Service) CarryOver(ctx context.Context, from, to string) (Day, error) {
	if from == to {
		return Day{}, ErrSameDay
	}
	if _, err := schedule.ParseDate(to); err != nil {
		return Day{}, fmt.Errorf("app: bad date %q: %w", to, err)
	}
	defer s.days.lock(from, to)()
	src, err := s.open(ctx, from)
	if err != nil {
		return Day{}, err
	}
	filled := schedule.Filled(src.State.Blocks)
	if len(filled) == 0 {
		return Day{}, fmt.Errorf("%w on %s", ErrNothingToSave, from)
	}

	blocks := make([]schedule.Block, 0, len(filled))
	for _, b := range filled {
		b.ID = ""
		blocks = append(blocks, b)
	}

	// The target keeps its creation time if it was saved before.
	var created schedule.Timestamp
	if saved, err := s.Persistence.LoadLocal(to); err == nil && saved != nil {
		created = saved.CreatedAt
	}

	day := Day{
		State:     s.engine().Adopt(to, blocks),
		CreatedAt: created,
		Notice:    "Carried over from " + from,
		Source:    "draft",
	}
	if err := s.saveDraft(day); err != nil {
		return Day{}, err
	}
	return day, nil
}
