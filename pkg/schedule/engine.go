package schedule

import (
	"strings"
	"time"

	"tableflip.dev/timebox/pkg/timeutil"
)

const (
	// DefaultDuration is the timebox length in minutes used when none is
	// configured.
	DefaultDuration = 60
	// roundTo is the mark fresh blocks are snapped to, in minutes.
	roundTo = 5
)

// Op names an engine operation in the event log.
type Op string

const (
	OpLoad   Op = "load"
	OpUpdate Op = "update"
	OpChain  Op = "chain"
	OpDelete Op = "delete"
	OpAdd    Op = "add"
	OpInsert Op = "insert"
)

// Event records one applied operation.
type Event struct {
	Op      Op        `json:"op"`
	Index   int       `json:"index"`
	BlockID string    `json:"blockId,omitempty"`
	At      time.Time `json:"at"`
}

// State is an immutable snapshot of the day being edited. Engine methods
// never modify the State they are given; they return a new one.
type State struct {
	Date   string
	Blocks []Block
	Events []Event
}

// Len returns the number of blocks.
func (s State) Len() int {
	return len(s.Blocks)
}

// Last returns the final block. It panics on an empty state, which the
// engine never produces.
func (s State) Last() Block {
	return s.Blocks[len(s.Blocks)-1]
}

func (s State) next(blocks []Block, events ...Event) State {
	log := make([]Event, 0, len(s.Events)+len(events))
	log = append(log, s.Events...)
	log = append(log, events...)
	return State{Date: s.Date, Blocks: blocks, Events: log}
}

// Engine applies schedule edits. Every operation is a transform on at most
// the edited block and its immediate neighbours, so ordering and
// non-overlap hold without a separate validation pass.
type Engine struct {
	// DefaultDuration is the length in minutes of blocks the engine creates.
	DefaultDuration int
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
	// NewID mints block ids; defaults to NewID.
	NewID func() string
}

// NewEngine returns an engine creating blocks of defaultDuration minutes.
func NewEngine(defaultDuration int) *Engine {
	return &Engine{DefaultDuration: defaultDuration}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return NewID()
}

func (e *Engine) duration() int {
	if e.DefaultDuration <= 0 {
		return DefaultDuration
	}
	return e.DefaultDuration
}

func (e *Engine) event(op Op, index int, id string) Event {
	return Event{Op: op, Index: index, BlockID: id, At: e.now()}
}

// Adopt starts a state for date from externally supplied blocks. The blocks
// are normalized and missing ids are assigned. An empty input yields a
// single fresh block.
func (e *Engine) Adopt(date string, blocks []Block) State {
	normalized := Normalize(blocks)
	for i := range normalized {
		if normalized[i].ID == "" {
			normalized[i].ID = e.newID()
		}
	}
	if len(normalized) == 0 {
		normalized = []Block{e.FreshBlock()}
	}
	return State{Date: date}.next(normalized, e.event(OpLoad, 0, ""))
}

// FreshBlock builds a block starting at the current time rounded up to the
// next five minute mark.
func (e *Engine) FreshBlock() Block {
	return BuildFreshBlock(e.now(), e.duration(), e.newID())
}

// BuildFreshBlock builds an unlabelled block starting at now rounded up to
// the next five minute mark and lasting duration minutes, capped at 23:59.
// The start never passes 23:58 so the block is never empty.
func BuildFreshBlock(now time.Time, duration int, id string) Block {
	if duration <= 0 {
		duration = DefaultDuration
	}
	start := timeutil.FromTime(now).RoundUp(roundTo)
	if latest := timeutil.LastMinute.Add(-1); start > latest {
		start = latest
	}
	return Block{ID: id, Start: start, End: start.Add(duration)}
}

// DefaultBlock is the 09:00-10:00 placeholder used for days other than
// today.
func DefaultBlock(id string) Block {
	return Block{ID: id, Start: timeutil.Clock(9, 0), End: timeutil.Clock(10, 0)}
}

// UpdateBlock replaces the block at index. Editing the final block with a
// non-empty label chains a new block after it unless the day is already
// used up.
func (e *Engine) UpdateBlock(s State, index int, b Block) (State, error) {
	if index < 0 || index >= s.Len() {
		return s, ErrIndexOutOfRange
	}
	if !b.Valid() {
		return s, invalid(ErrInvalidInterval, "%s-%s is not a valid time range", b.Start, b.End)
	}
	if index > 0 && b.Start < s.Blocks[index-1].End {
		return s, invalid(ErrOverlap, "start %s overlaps the previous block ending %s", b.Start, s.Blocks[index-1].End)
	}
	if index < s.Len()-1 && b.End > s.Blocks[index+1].Start {
		return s, invalid(ErrOverlap, "end %s overlaps the next block starting %s", b.End, s.Blocks[index+1].Start)
	}
	if b.ID == "" {
		b.ID = s.Blocks[index].ID
	}

	blocks := cloneBlocks(s.Blocks)
	blocks[index] = b
	events := []Event{e.event(OpUpdate, index, b.ID)}

	if index == len(blocks)-1 && strings.TrimSpace(b.Label) != "" && !b.End.Exhausted() {
		chained := Block{ID: e.newID(), Start: b.End, End: b.End.Add(e.duration())}
		blocks = append(blocks, chained)
		events = append(events, e.event(OpChain, len(blocks)-1, chained.ID))
	}
	return s.next(blocks, events...), nil
}

// SetLabel changes only the label of the block at index.
func (e *Engine) SetLabel(s State, index int, label string) (State, error) {
	if index < 0 || index >= s.Len() {
		return s, ErrIndexOutOfRange
	}
	b := s.Blocks[index]
	b.Label = label
	return e.UpdateBlock(s, index, b)
}

// DeleteBlock removes the block at index. The last remaining block is never
// removed.
func (e *Engine) DeleteBlock(s State, index int) State {
	if s.Len() <= 1 || index < 0 || index >= s.Len() {
		return s
	}
	removed := s.Blocks[index]
	blocks := make([]Block, 0, s.Len()-1)
	blocks = append(blocks, s.Blocks[:index]...)
	blocks = append(blocks, s.Blocks[index+1:]...)
	return s.next(blocks, e.event(OpDelete, index, removed.ID))
}

// AddTimebox appends a block at the end of the day. When the schedule has
// fallen behind the clock the new block starts at the current time rounded
// up to five minutes; otherwise it chains from the last block's end.
func (e *Engine) AddTimebox(s State) State {
	if s.Len() == 0 {
		b := e.FreshBlock()
		return s.next([]Block{b}, e.event(OpAdd, 0, b.ID))
	}
	lastEnd := s.Last().End
	if lastEnd.Exhausted() {
		return s
	}

	start := lastEnd
	// Only today can fall behind the clock. Other days keep chaining.
	if t := e.now(); s.Date == "" || SameDay(s.Date, t) {
		if now := timeutil.FromTime(t); lastEnd <= now {
			start = now.RoundUp(roundTo)
		}
	}
	if start.Exhausted() {
		return s
	}

	b := Block{ID: e.newID(), Start: start, End: start.Add(e.duration())}
	blocks := append(cloneBlocks(s.Blocks), b)
	return s.next(blocks, e.event(OpAdd, len(blocks)-1, b.ID))
}

// InsertBetween splits minutes off the blocks at indexBefore and
// indexBefore+1 and inserts a new block in the freed gap. The first block
// gives up minutes/2 from its end and the second gives up the rest from its
// start, so the new block is exactly minutes long when the two were
// adjacent. Both neighbours must be strictly longer than minutes.
func (e *Engine) InsertBetween(s State, indexBefore, minutes int) (State, error) {
	if indexBefore < 0 || indexBefore+1 >= s.Len() {
		return s, ErrIndexOutOfRange
	}
	if minutes <= 0 {
		return s, invalid(ErrInvalidInterval, "adjust needs a positive number of minutes, got %d", minutes)
	}

	a, b := s.Blocks[indexBefore], s.Blocks[indexBefore+1]
	if a.Duration() <= minutes || b.Duration() <= minutes {
		return s, invalid(ErrNotEnoughRoom,
			"Not enough room — both adjacent blocks need to be longer than %d min", minutes)
	}

	fromA := minutes / 2
	fromB := minutes - fromA
	a.End = timeutil.TimeOfDay(int(a.End) - fromA)
	b.Start = timeutil.TimeOfDay(int(b.Start) + fromB)
	middle := Block{ID: e.newID(), Start: a.End, End: b.Start}

	blocks := make([]Block, 0, s.Len()+1)
	blocks = append(blocks, s.Blocks[:indexBefore]...)
	blocks = append(blocks, a, middle, b)
	blocks = append(blocks, s.Blocks[indexBefore+2:]...)
	return s.next(blocks, e.event(OpInsert, indexBefore+1, middle.ID)), nil
}
