package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-skyplan/internal/astro"
	"github.com/litescript/ls-skyplan/internal/catalog"
)

var testObserver = astro.Observer{Name: "Backyard", LatDeg: 45, LonDeg: 5}

func entry(idx int, name string, current, night astro.Status) catalog.Enriched {
	return catalog.Enriched{
		Entry:         catalog.Entry{Index: idx, Name: name, RAHours: 1, DecDeg: 1},
		CurrentStatus: current,
		Status:        night,
		Enriched:      true,
	}
}

func TestNewManager(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg)

	if m == nil {
		t.Fatal("NewManager returned nil")
	}

	if m.RefreshInterval() != cfg.RefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", m.RefreshInterval(), cfg.RefreshInterval)
	}

	if m.HasData() {
		t.Error("HasData should be false initially")
	}
}

func TestManager_BeginCommit(t *testing.T) {
	m := NewManager(DefaultConfig())
	at := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)

	req := m.Begin(testObserver, at, astro.HorizonMask{})
	if req.Generation != 1 {
		t.Errorf("first generation = %d, want 1", req.Generation)
	}

	entries := []catalog.Enriched{entry(0, "M31", astro.StatusVisible, astro.StatusVisible)}
	if !m.Commit(req, entries, astro.Night{}, nil) {
		t.Fatal("latest request should commit")
	}

	if !m.HasData() {
		t.Error("HasData should be true after Commit")
	}

	snap := m.Snapshot()
	if snap.Generation != 1 || !snap.Instant.Equal(at) || snap.Observer.Name != "Backyard" {
		t.Errorf("snapshot header = gen %d at %v from %q", snap.Generation, snap.Instant, snap.Observer.Name)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].Name != "M31" {
		t.Errorf("snapshot entries = %+v", snap.Entries)
	}
	if len(snap.History) != 1 || snap.History[0].Visible != 1 {
		t.Errorf("history = %+v", snap.History)
	}
}

func TestManager_StaleCommitDiscarded(t *testing.T) {
	m := NewManager(DefaultConfig())
	at := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)

	older := m.Begin(testObserver, at, astro.HorizonMask{})
	newer := m.Begin(testObserver, at.Add(time.Minute), astro.HorizonMask{})

	// The newer computation finishes first
	if !m.Commit(newer, []catalog.Enriched{entry(0, "new", astro.StatusVisible, astro.StatusVisible)}, astro.Night{}, nil) {
		t.Fatal("newer request should commit")
	}
	if m.Commit(older, []catalog.Enriched{entry(0, "old", astro.StatusVisible, astro.StatusVisible)}, astro.Night{}, nil) {
		t.Error("older request should be discarded")
	}

	snap := m.Snapshot()
	if snap.Entries[0].Name != "new" {
		t.Errorf("stale result overwrote state: %q", snap.Entries[0].Name)
	}
	if snap.StaleCommits != 1 {
		t.Errorf("StaleCommits = %d, want 1", snap.StaleCommits)
	}

	// Committing the same generation twice is also stale
	if m.Commit(newer, nil, astro.Night{}, nil) {
		t.Error("double commit should be discarded")
	}
}

func TestManager_StaleBeforeCommit(t *testing.T) {
	m := NewManager(DefaultConfig())
	first := m.Begin(testObserver, time.Now(), astro.HorizonMask{})
	m.Begin(testObserver, time.Now(), astro.HorizonMask{})

	if m.Commit(first, nil, astro.Night{}, nil) {
		t.Error("superseded request should not commit")
	}
	if m.HasData() {
		t.Error("no data should be stored from a stale commit")
	}
	if m.Latest() != 2 {
		t.Errorf("Latest() = %d, want 2", m.Latest())
	}
}

func TestManager_CommitWithError(t *testing.T) {
	m := NewManager(DefaultConfig())

	req := m.Begin(testObserver, time.Now(), astro.HorizonMask{})
	m.Commit(req, []catalog.Enriched{entry(0, "M31", astro.StatusVisible, astro.StatusVisible)}, astro.Night{}, nil)

	testErr := errors.New("catalog fetch failed")
	req = m.Begin(testObserver, time.Now(), astro.HorizonMask{})
	if !m.Commit(req, nil, astro.Night{}, testErr) {
		t.Fatal("failed latest request should still commit its error")
	}

	snap := m.Snapshot()
	if snap.LastError != testErr {
		t.Errorf("LastError = %v, want %v", snap.LastError, testErr)
	}
	if len(snap.Entries) != 1 {
		t.Error("previous entries should survive a failed computation")
	}
}

func TestManager_EmptyCatalogHasData(t *testing.T) {
	m := NewManager(DefaultConfig())
	req := m.Begin(testObserver, time.Now(), astro.HorizonMask{})
	m.Commit(req, nil, astro.Night{}, nil)

	if !m.HasData() {
		t.Error("an empty committed catalog is still data")
	}
}

func TestManager_HistoryBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxHistoryLen = 3
	m := NewManager(cfg)

	for i := 0; i < 5; i++ {
		req := m.Begin(testObserver, time.Now().Add(time.Duration(i)*time.Minute), astro.HorizonMask{})
		m.Commit(req, []catalog.Enriched{}, astro.Night{}, nil)
	}

	if got := len(m.Snapshot().History); got != 3 {
		t.Errorf("history length = %d, want 3", got)
	}
}

func TestManager_EventDetection(t *testing.T) {
	m := NewManager(DefaultConfig())
	at := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)

	req := m.Begin(testObserver, at, astro.HorizonMask{})
	m.Commit(req, []catalog.Enriched{
		entry(0, "M31", astro.StatusNonVisible, astro.StatusVisible),
		entry(1, "M42", astro.StatusVisible, astro.StatusVisible),
		entry(2, "M13", astro.StatusPartiallyVisible, astro.StatusVisible),
		entry(3, "M57", astro.StatusVisible, astro.StatusVisible),
	}, astro.Night{}, nil)

	if events := m.RecentEvents(10); len(events) != 0 {
		t.Fatalf("first commit should not generate events, got %v", events)
	}

	req = m.Begin(testObserver, at.Add(time.Hour), astro.HorizonMask{})
	m.Commit(req, []catalog.Enriched{
		entry(0, "M31", astro.StatusPartiallyVisible, astro.StatusVisible),
		entry(1, "M42", astro.StatusNonVisible, astro.StatusVisible),
		entry(2, "M13", astro.StatusMasked, astro.StatusVisible),
		entry(3, "M57", astro.StatusVisible, astro.StatusVisible),
	}, astro.Night{}, nil)

	events := m.RecentEvents(10)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %v", len(events), events)
	}

	want := map[string]EventType{"M31": EventRose, "M42": EventSet, "M13": EventStatusChange}
	for _, e := range events {
		if want[e.Name] != e.Type {
			t.Errorf("%s event = %s, want %s", e.Name, e.Type, want[e.Name])
		}
		if !e.Timestamp.Equal(at.Add(time.Hour)) {
			t.Errorf("%s event timestamp = %v", e.Name, e.Timestamp)
		}
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 3
	m := NewManager(cfg)

	statuses := []astro.Status{astro.StatusVisible, astro.StatusNonVisible}
	for i := 0; i < 6; i++ {
		req := m.Begin(testObserver, time.Now(), astro.HorizonMask{})
		m.Commit(req, []catalog.Enriched{entry(0, "M31", statuses[i%2], astro.StatusVisible)}, astro.Night{}, nil)
	}

	events := m.RecentEvents(10)
	if len(events) != 3 {
		t.Fatalf("expected 3 events in ring, got %d", len(events))
	}
	// Five transitions alternate SET, ROSE, SET, ROSE, SET; the last three remain
	if events[0].Type != EventSet || events[1].Type != EventRose || events[2].Type != EventSet {
		t.Errorf("ring order = %s, %s, %s", events[0].Type, events[1].Type, events[2].Type)
	}

	if got := m.RecentEvents(1); len(got) != 1 || got[0].Type != EventSet {
		t.Errorf("RecentEvents(1) = %v", got)
	}
}

func TestManager_Snapshot_IsCopy(t *testing.T) {
	m := NewManager(DefaultConfig())
	req := m.Begin(testObserver, time.Now(), astro.HorizonMask{})
	m.Commit(req, []catalog.Enriched{entry(0, "M31", astro.StatusVisible, astro.StatusVisible)}, astro.Night{}, nil)

	snap := m.Snapshot()
	snap.Entries[0].Name = "modified"

	if m.Snapshot().Entries[0].Name != "M31" {
		t.Error("Snapshot modification affected manager state")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())

	var wg sync.WaitGroup
	iterations := 100

	// Writer goroutines racing on generations
	for w := 0; w < 3; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				req := m.Begin(testObserver, time.Now(), astro.HorizonMask{})
				m.Commit(req, []catalog.Enriched{entry(i, "obj", astro.StatusVisible, astro.StatusVisible)}, astro.Night{}, nil)
			}
		}()
	}

	// Reader goroutines
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_ = m.Snapshot()
				_ = m.HasData()
				_ = m.RefreshInterval()
				_ = m.RecentEvents(5)
			}
		}()
	}

	wg.Wait()

	if m.Latest() != uint64(3*iterations) {
		t.Errorf("Latest() = %d, want %d", m.Latest(), 3*iterations)
	}
}

func TestManager_SetRefreshInterval(t *testing.T) {
	m := NewManager(DefaultConfig())

	newInterval := 30 * time.Second
	m.SetRefreshInterval(newInterval)

	if m.RefreshInterval() != newInterval {
		t.Errorf("RefreshInterval = %v, want %v", m.RefreshInterval(), newInterval)
	}
}
