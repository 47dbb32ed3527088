package collision

import "sync/atomic"

// Buffer is the single handoff point between the worker and its readers.
//
// The writer builds each PairSet privately and publishes it with one atomic
// pointer store; readers load the pointer. A reader therefore always sees a
// complete set from some finished cycle and never blocks the writer.
type Buffer struct {
	current    atomic.Pointer[PairSet]
	published  atomic.Uint64
	violations atomic.Uint64
}

// NewBuffer creates a buffer holding an empty set for cycle 0.
func NewBuffer() *Buffer {
	b := &Buffer{}
	b.current.Store(NewPairSet(0, 0))
	return b
}

// Publish makes set the current result. Sets must arrive in increasing cycle
// order; a set that is not newer than the current one is rejected and
// counted as a violation.
func (b *Buffer) Publish(set *PairSet) bool {
	for {
		old := b.current.Load()
		if set == nil || set.Cycle <= old.Cycle {
			b.violations.Add(1)
			return false
		}
		if b.current.CompareAndSwap(old, set) {
			b.published.Add(1)
			return true
		}
	}
}

// Load returns the most recently published set. The result is never nil.
func (b *Buffer) Load() *PairSet {
	return b.current.Load()
}

// Published returns how many sets have been accepted.
func (b *Buffer) Published() uint64 {
	return b.published.Load()
}

// Violations returns how many out-of-order publications were rejected.
func (b *Buffer) Violations() uint64 {
	return b.violations.Load()
}
