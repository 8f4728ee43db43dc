package track

import (
	"sort"
	"sync"
	"time"

	"github.com/skywatch/skywatch/internal/config"
)

// Sighting is one alert-eligible observation of a tracked aircraft.
// Sightings are ephemeral: produced by Evaluate, handed to the notification
// sinks, then committed back into the table. They are never persisted.
type Sighting struct {
	Icao24       string    `json:"icao24"`
	Registration string    `json:"registration"`
	ObservedAt   time.Time `json:"observed_at"`
}

// Status is one aircraft's row in API snapshots. The zero LastAlertAt means
// the aircraft has never fired an alert.
type Status struct {
	Icao24       string
	Registration string
	LastAlertAt  time.Time
}

// Table holds the fixed set of tracked aircraft and the last alert time for
// each. The aircraft set is immutable after construction; the alert times
// are the only mutable state, updated through Commit.
//
// Table is safe for concurrent use.
type Table struct {
	mu            sync.RWMutex
	registrations map[string]string
	lastAlert     map[string]time.Time
	cooldown      time.Duration
}

// NewTable builds a Table for the configured aircraft. Every aircraft starts
// with a zero last-alert time, so the first observation always fires.
func NewTable(aircraft []config.Aircraft, cooldown time.Duration) *Table {
	regs := make(map[string]string, len(aircraft))
	last := make(map[string]time.Time, len(aircraft))
	for _, a := range aircraft {
		regs[a.Icao24] = a.Registration
		last[a.Icao24] = time.Time{}
	}
	return &Table{
		registrations: regs,
		lastAlert:     last,
		cooldown:      cooldown,
	}
}

// Evaluate decides which of the observed transponder codes should fire an
// alert at now: tracked, and last alerted more than the cooldown ago.
//
// Evaluate never mutates the table — callers commit the returned sightings
// with Commit once delivery has been attempted. A per-call seen set
// guarantees at most one Sighting per aircraft even when the raw feed
// contains duplicate rows. Codes outside the tracked set are ignored.
func (t *Table) Evaluate(observed []string, now time.Time) []Sighting {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Sighting
	seen := make(map[string]struct{}, len(observed))
	for _, code := range observed {
		reg, tracked := t.registrations[code]
		if !tracked {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		if now.Sub(t.lastAlert[code]) > t.cooldown {
			out = append(out, Sighting{
				Icao24:       code,
				Registration: reg,
				ObservedAt:   now,
			})
		}
	}
	return out
}

// Commit records the alert time for each fired sighting, consuming the
// cooldown window for those aircraft.
func (t *Table) Commit(sightings []Sighting) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range sightings {
		t.lastAlert[s.Icao24] = s.ObservedAt
	}
}

// LastAlert returns the last alert time for the given transponder code and
// whether the code is tracked at all. The zero time means "never alerted".
func (t *Table) LastAlert(icao string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ts, ok := t.lastAlert[icao]
	return ts, ok
}

// Icaos returns the tracked transponder codes in sorted order, for use as
// the fetch query set.
func (t *Table) Icaos() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.registrations))
	for code := range t.registrations {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns a copy of the full table state, sorted by transponder
// code.
func (t *Table) Snapshot() []Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Status, 0, len(t.registrations))
	for code, reg := range t.registrations {
		out = append(out, Status{
			Icao24:       code,
			Registration: reg,
			LastAlertAt:  t.lastAlert[code],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Icao24 < out[j].Icao24 })
	return out
}
