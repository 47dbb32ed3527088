// Package collision detects which bodies of a scene intersect.
//
// MeshOverlap answers the question for two bodies directly. Worker runs the
// all-pairs scan continuously in the background and publishes each cycle's
// result through a Buffer, from which foreground readers take the most
// recent complete set without waiting on the scan.
package collision

import "sort"

// Pair is a colliding pair of body names. Order carries no meaning.
type Pair struct {
	A, B string
}

// Matches reports whether the pair names a and b in either order.
func (p Pair) Matches(a, b string) bool {
	return (p.A == a && p.B == b) || (p.A == b && p.B == a)
}

// key returns the pair with its names in lexical order.
func (p Pair) key() Pair {
	if p.B < p.A {
		return Pair{A: p.B, B: p.A}
	}
	return p
}

// PairSet is the result of one detection cycle: every pair judged to be
// colliding, in the order the scan found them. Once published a set is never
// modified, so readers may hold on to it as long as they like. Outside this
// package a set is read-only.
type PairSet struct {
	Cycle        uint64 // Detection cycle that produced the set, 0 = none yet
	SceneVersion uint64 // Scene version the cycle scanned

	pairs []Pair
	index map[Pair]struct{}
}

// NewPairSet creates an empty set for the given cycle.
func NewPairSet(cycle, sceneVersion uint64) *PairSet {
	return &PairSet{
		Cycle:        cycle,
		SceneVersion: sceneVersion,
		index:        make(map[Pair]struct{}),
	}
}

// add appends a pair. Adding the same unordered pair twice keeps both
// entries in Pairs but Contains is unaffected. Only the scan that owns an
// unpublished set may call it.
func (s *PairSet) add(a, b string) {
	p := Pair{A: a, B: b}
	s.pairs = append(s.pairs, p)
	s.index[p.key()] = struct{}{}
}

// Contains reports whether {a, b} is in the set, in either order.
// A nil set contains nothing.
func (s *PairSet) Contains(a, b string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[Pair{A: a, B: b}.key()]
	return ok
}

// Len returns the number of pairs, counting duplicates.
func (s *PairSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.pairs)
}

// Pairs returns a copy of the pairs in insertion order.
func (s *PairSet) Pairs() []Pair {
	if s == nil {
		return nil
	}
	out := make([]Pair, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// Involving returns the names colliding with name, in insertion order.
func (s *PairSet) Involving(name string) []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, p := range s.pairs {
		switch name {
		case p.A:
			out = append(out, p.B)
		case p.B:
			out = append(out, p.A)
		}
	}
	return out
}

// Diff compares s with an earlier set and returns the pairs that started
// and stopped colliding. Pairs are reported in lexical name order.
func (s *PairSet) Diff(prev *PairSet) (began, ended []Pair) {
	for k := range s.indexOrEmpty() {
		if !prev.Contains(k.A, k.B) {
			began = append(began, k)
		}
	}
	for k := range prev.indexOrEmpty() {
		if !s.Contains(k.A, k.B) {
			ended = append(ended, k)
		}
	}
	sortPairs(began)
	sortPairs(ended)
	return began, ended
}

func (s *PairSet) indexOrEmpty() map[Pair]struct{} {
	if s == nil {
		return nil
	}
	return s.index
}

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
}
