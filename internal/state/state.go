// Package state provides thread-safe state management for the application.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-skyplan/internal/astro"
	"github.com/litescript/ls-skyplan/internal/catalog"
	"github.com/litescript/ls-skyplan/internal/metrics"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventRose         EventType = "ROSE"
	EventSet          EventType = "SET"
	EventStatusChange EventType = "STATUS_CHANGE"
)

// Event records an object whose current status changed between two
// committed computations.
type Event struct {
	Type      EventType    `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Index     int          `json:"index"`
	Name      string       `json:"name"`
	OldStatus astro.Status `json:"old_status,omitempty"`
	NewStatus astro.Status `json:"new_status,omitempty"`
}

// HistoryEntry is the visible object count of one committed computation.
type HistoryEntry struct {
	Timestamp time.Time
	Visible   int
}

// Request identifies one computation. Only the most recently begun
// request may commit.
type Request struct {
	Generation uint64
	Observer   astro.Observer
	Instant    time.Time
	Mask       astro.HorizonMask
	StartedAt  time.Time
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Generations
	latest    uint64
	committed uint64

	// Current state
	current         []catalog.Enriched
	request         Request
	night           astro.Night
	lastCompute     time.Time
	lastError       error
	computeDuration time.Duration
	stale           int

	// History buffer
	history       []HistoryEntry
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	// Configuration
	refreshInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen   int
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   120, // 2 hours at one computation per minute
		MaxEvents:       50,
		RefreshInterval: time.Minute,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		maxHistoryLen:   cfg.MaxHistoryLen,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
	}
}

// Begin starts a computation for the observer, instant and mask. Any
// computation begun earlier becomes stale.
func (m *Manager) Begin(obs astro.Observer, at time.Time, mask astro.HorizonMask) Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.latest++
	metrics.Generation.Set(float64(m.latest))

	return Request{
		Generation: m.latest,
		Observer:   obs,
		Instant:    at,
		Mask:       mask,
		StartedAt:  time.Now(),
	}
}

// Commit stores the result of req. It returns false and discards the
// result when a newer request has begun since. A failed computation keeps
// the previous entries and records err.
func (m *Manager) Commit(req Request, entries []catalog.Enriched, night astro.Night, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.Generation != m.latest || req.Generation <= m.committed {
		m.stale++
		metrics.StaleCommits.Inc()
		return false
	}

	m.committed = req.Generation
	m.lastCompute = time.Now()
	m.lastError = err
	m.computeDuration = m.lastCompute.Sub(req.StartedAt)

	if err != nil {
		return true
	}

	if m.current != nil {
		m.detectEvents(entries, req.Instant)
	}

	if entries == nil {
		entries = []catalog.Enriched{}
	}
	m.current = entries
	m.request = req
	m.night = night

	m.history = append(m.history, HistoryEntry{Timestamp: req.Instant, Visible: countVisible(entries)})
	if m.maxHistoryLen > 0 && len(m.history) > m.maxHistoryLen {
		m.history = m.history[1:]
	}

	return true
}

// detectEvents compares new entries with the current ones by catalog
// index and generates events.
func (m *Manager) detectEvents(entries []catalog.Enriched, at time.Time) {
	prev := make(map[int]astro.Status, len(m.current))
	for _, e := range m.current {
		if e.Enriched {
			prev[e.Index] = e.CurrentStatus
		}
	}

	for _, e := range entries {
		if !e.Enriched {
			continue
		}
		old, ok := prev[e.Index]
		if !ok || old == e.CurrentStatus {
			continue
		}

		typ := EventStatusChange
		switch {
		case old == astro.StatusNonVisible:
			typ = EventRose
		case e.CurrentStatus == astro.StatusNonVisible:
			typ = EventSet
		}

		m.addEvent(Event{
			Type:      typ,
			Timestamp: at,
			Index:     e.Index,
			Name:      e.Name,
			OldStatus: old,
			NewStatus: e.CurrentStatus,
		})
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

func countVisible(entries []catalog.Enriched) int {
	n := 0
	for _, e := range entries {
		if e.Status == astro.StatusVisible {
			n++
		}
	}
	return n
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Generation      uint64
	Observer        astro.Observer
	Instant         time.Time
	Mask            astro.HorizonMask
	Night           astro.Night
	Entries         []catalog.Enriched
	LastCompute     time.Time
	LastError       error
	ComputeDuration time.Duration
	StaleCommits    int
	History         []HistoryEntry
	Events          []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]catalog.Enriched, len(m.current))
	copy(entries, m.current)

	history := make([]HistoryEntry, len(m.history))
	copy(history, m.history)

	return Snapshot{
		Generation:      m.request.Generation,
		Observer:        m.request.Observer,
		Instant:         m.request.Instant,
		Mask:            m.request.Mask,
		Night:           m.night,
		Entries:         entries,
		LastCompute:     m.lastCompute,
		LastError:       m.lastError,
		ComputeDuration: m.computeDuration,
		StaleCommits:    m.stale,
		History:         history,
		Events:          m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Latest returns the most recently begun generation.
func (m *Manager) Latest() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true if at least one computation has been committed.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
