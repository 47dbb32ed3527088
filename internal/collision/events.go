package collision

import (
	"errors"
	"time"
)

// EventKind says whether a contact started or stopped.
type EventKind string

const (
	ContactBegin EventKind = "begin"
	ContactEnd   EventKind = "end"
)

// Event is a contact transition observed between two consecutive cycles.
type Event struct {
	Cycle uint64
	Pair  Pair
	Kind  EventKind
	At    time.Time
}

// Recorder receives contact transitions from a worker.
// This lets the worker report contacts without depending on a sink
// (storage, logs, UI). RecordEvents is called from a single goroutine.
type Recorder interface {
	RecordEvents(events []Event) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(events []Event) error

// RecordEvents calls f(events).
func (f RecorderFunc) RecordEvents(events []Event) error {
	return f(events)
}

// Recorders fans events out to every non-nil recorder. All recorders are
// called even if one fails; the errors are joined.
func Recorders(rs ...Recorder) Recorder {
	var live []Recorder
	for _, r := range rs {
		if r != nil {
			live = append(live, r)
		}
	}
	return RecorderFunc(func(events []Event) error {
		var errs []error
		for _, r := range live {
			if err := r.RecordEvents(events); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// transitions converts the difference between two cycles into events.
func transitions(prev, next *PairSet, at time.Time) []Event {
	began, ended := next.Diff(prev)
	if len(began) == 0 && len(ended) == 0 {
		return nil
	}
	events := make([]Event, 0, len(began)+len(ended))
	for _, p := range began {
		events = append(events, Event{Cycle: next.Cycle, Pair: p, Kind: ContactBegin, At: at})
	}
	for _, p := range ended {
		events = append(events, Event{Cycle: next.Cycle, Pair: p, Kind: ContactEnd, At: at})
	}
	return events
}
