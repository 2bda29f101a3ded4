package classify

import "time"

// DedupeWindow is how long after an accepted trigger further triggers of
// the same kind are suppressed. Multiple detection strategies can observe
// one user action; suppression keeps it a single event.
const DedupeWindow = time.Second

// Deduper suppresses repeated classification triggers arriving within a
// short window of the previously accepted one, tracked per trigger kind.
type Deduper struct {
	window time.Duration
	last   map[string]time.Time
}

func NewDeduper(window time.Duration) *Deduper {
	if window <= 0 {
		window = DedupeWindow
	}
	return &Deduper{window: window, last: map[string]time.Time{}}
}

// Accept reports whether a trigger of the given kind at now should be
// acted on, recording it as the latest accepted trigger when it is.
func (d *Deduper) Accept(kind string, now time.Time) bool {
	if previous, ok := d.last[kind]; ok && now.Sub(previous) < d.window {
		return false
	}
	d.last[kind] = now
	return true
}
