package tracker

import (
	"sync"
	"testing"
)

func TestTracker(t *testing.T) {
	tr := New()

	tr.TrackFix("mock")
	tr.TrackFix("mock")
	tr.TrackOffRoute("mock")
	tr.TrackUpdateSaved("mock")
	tr.TrackPersistFailure("replay")

	snap := tr.Snapshot()
	mock := snap["mock"]
	if mock.FixesProcessed != 2 {
		t.Errorf("FixesProcessed = %d, want 2", mock.FixesProcessed)
	}
	if mock.OffRouteEvents != 1 {
		t.Errorf("OffRouteEvents = %d, want 1", mock.OffRouteEvents)
	}
	if snap["replay"].PersistFailures != 1 {
		t.Errorf("PersistFailures = %d, want 1", snap["replay"].PersistFailures)
	}

	// Snapshot is a copy
	snap["mock"] = SourceStats{}
	if tr.Snapshot()["mock"].FixesProcessed != 2 {
		t.Error("Snapshot must not alias internal state")
	}
}

func TestTracker_Concurrent(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.TrackFix("mock")
			}
		}()
	}
	wg.Wait()

	if got := tr.Snapshot()["mock"].FixesProcessed; got != 1000 {
		t.Errorf("FixesProcessed = %d, want 1000", got)
	}
}
