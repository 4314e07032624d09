package watch

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/settings"
	"tableflip.dev/timebox/pkg/store"
)

func init() {
	color.NoColor = true
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchPrintsSettingsChange(t *testing.T) {
	p, err := store.Load(&store.FileConfig{Path: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("store.Load() = %v", err)
	}
	svc := app.New(p, nil, nil, nil)
	out := &syncBuffer{}
	w := &Watch{Service: svc, Out: out}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Do(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "settings") {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("no settings event, output:\n%s", out.String())
		}
		// Keep writing until the watcher is up.
		st := settings.Defaults()
		st.Name = "Ada"
		if err := p.SaveSettings(st); err != nil {
			t.Fatalf("SaveSettings() = %v", err)
		}
		time.Sleep(150 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch.Do() = %v", err)
	}
}
