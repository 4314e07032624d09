package schedule

import (
	"encoding/json"
	"fmt"
	"time"

	"tableflip.dev/timebox/pkg/timeutil"
)

// Schedule is the persisted plan for one calendar day.
type Schedule struct {
	Date      string
	CreatedAt Timestamp
	UpdatedAt Timestamp
	Blocks    []Block
}

// New returns a schedule for date stamped with now.
func New(date string, now time.Time, blocks []Block) *Schedule {
	return &Schedule{
		Date:      date,
		CreatedAt: Timestamp{Time: now},
		UpdatedAt: Timestamp{Time: now},
		Blocks:    cloneBlocks(blocks),
	}
}

// Touch updates the modification time, keeping the creation time when one
// is already recorded.
func (s *Schedule) Touch(now time.Time) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = Timestamp{Time: now}
	}
	s.UpdatedAt = Timestamp{Time: now}
}

type wireSchedule struct {
	Date      string     `json:"date"`
	CreatedAt Timestamp  `json:"createdAt"`
	UpdatedAt Timestamp  `json:"updatedAt"`
	Tasks     []wireTask `json:"tasks"`
}

type wireTask struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Task      string `json:"task"`
}

func (s Schedule) MarshalJSON() ([]byte, error) {
	w := wireSchedule{
		Date:      s.Date,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Tasks:     make([]wireTask, 0, len(s.Blocks)),
	}
	for _, b := range s.Blocks {
		w.Tasks = append(w.Tasks, wireTask{
			ID:        b.ID,
			StartTime: b.Start.String(),
			EndTime:   b.End.WireEnd(),
			Task:      b.Label,
		})
	}
	return json.Marshal(w)
}

func (s *Schedule) UnmarshalJSON(data []byte) error {
	var w wireSchedule
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	blocks := make([]Block, 0, len(w.Tasks))
	for i, t := range w.Tasks {
		start, err := timeutil.ParseClock(t.StartTime)
		if err != nil {
			return fmt.Errorf("task %d start: %w", i, err)
		}
		end, err := timeutil.ParseEnd(t.EndTime)
		if err != nil {
			return fmt.Errorf("task %d end: %w", i, err)
		}
		blocks = append(blocks, Block{
			ID:    t.ID,
			Start: start,
			End:   end,
			Label: t.Task,
		})
	}
	s.Date = w.Date
	s.CreatedAt = w.CreatedAt
	s.UpdatedAt = w.UpdatedAt
	s.Blocks = blocks
	return nil
}

func cloneBlocks(in []Block) []Block {
	if in == nil {
		return nil
	}
	out := make([]Block, len(in))
	copy(out, in)
	return out
}
