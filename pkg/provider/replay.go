package provider

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"smartnav/pkg/model"
)

// Replay reads recorded fixes from a JSONL file, one fix object per line,
// and delivers them paced by their recorded timestamps. A speed multiplier
// of 0 disables pacing and delivers fixes as fast as the consumer accepts.
type Replay struct {
	fixes     chan model.GeoFix
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewReplay opens the fix log at path for playback.
func NewReplay(path string, speed float64) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fix log: %w", err)
	}

	r := &Replay{
		fixes:  make(chan model.GeoFix, 16),
		stopCh: make(chan struct{}),
	}
	r.wg.Add(1)
	go r.run(f, speed)
	return r, nil
}

// Fixes returns the fix channel.
func (r *Replay) Fixes() <-chan model.GeoFix {
	return r.fixes
}

// Close stops playback and waits for the reader to exit.
func (r *Replay) Close() error {
	r.closeOnce.Do(func() {
		close(r.stopCh)
	})
	r.wg.Wait()
	return nil
}

func (r *Replay) run(f *os.File, speed float64) {
	defer r.wg.Done()
	defer close(r.fixes)
	defer f.Close()

	var prevTs uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var fix model.GeoFix
		if err := json.Unmarshal(line, &fix); err != nil {
			slog.Warn("skipping malformed fix log line", "error", err)
			continue
		}

		if speed > 0 && prevTs > 0 && fix.TimestampMs > prevTs {
			delay := time.Duration(float64(fix.TimestampMs-prevTs)/speed) * time.Millisecond
			select {
			case <-time.After(delay):
			case <-r.stopCh:
				return
			}
		}
		prevTs = fix.TimestampMs

		select {
		case r.fixes <- fix:
		case <-r.stopCh:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		slog.Error("fix log read failed", "error", err)
	}
}
