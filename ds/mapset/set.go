// Package mapset implements a small generic set type backed by a Go map.
//
// It exists because the DatasetCatalog's import-graph traversal (see
// catalog.LookupList) needs an ordinary visited-set to prune duplicate and
// cyclic dataset visits, and a comparable generic Set is the cleanest way to
// express that without reaching for interface{}-keyed maps at every call
// site.
package mapset

import (
	"encoding/json"
	"sort"

	"github.com/cockroachdb/errors"
)

// ErrNilSet reports a nil set. No function in this package returns it.
var ErrNilSet = errors.New("mapset: nil set")

// Set is an unordered collection of comparable elements.
// The zero value is an empty, unsorted set: every method initializes the
// backing map on first use. New is needed to apply Options such as WithSorted.
type Set[T comparable] struct {
	elems map[T]struct{}
	cmp   func(a, b T) int
}

// Option configures a Set at construction time.
type Option[T comparable] func(*Set[T])

// WithSorted makes Slice (and therefore MarshalJSON, Range, Iter) return
// elements ordered by cmp instead of arbitrary map order.
func WithSorted[T comparable](cmp func(a, b T) int) Option[T] {
	return func(s *Set[T]) { s.cmp = cmp }
}

// New creates an empty Set with the given options applied.
func New[T comparable](opts ...Option[T]) (*Set[T], error) {
	s := &Set[T]{elems: make(map[T]struct{})}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromSlice creates a Set containing every element of in.
func NewFromSlice[T comparable](in []T, opts ...Option[T]) (*Set[T], error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	s.Add(in...)
	return s, nil
}

// NewFromMapKeys creates a Set containing every key of m.
func NewFromMapKeys[K comparable, V any](m map[K]V, opts ...Option[K]) (*Set[K], error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	for k := range m {
		s.Add(k)
	}
	return s, nil
}

// NewFromMapValues creates a Set containing every value of m.
func NewFromMapValues[K comparable, V comparable](m map[K]V, opts ...Option[V]) (*Set[V], error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	for _, v := range m {
		s.Add(v)
	}
	return s, nil
}

func (s *Set[T]) init() {
	if s.elems == nil {
		s.elems = make(map[T]struct{})
	}
}

// Add inserts items into the set and returns how many were newly added.
func (s *Set[T]) Add(items ...T) int {
	s.init()
	added := 0
	for _, item := range items {
		if _, ok := s.elems[item]; !ok {
			s.elems[item] = struct{}{}
			added++
		}
	}
	return added
}

// Remove deletes items from the set. Missing items are ignored.
func (s *Set[T]) Remove(items ...T) {
	s.init()
	for _, item := range items {
		delete(s.elems, item)
	}
}

// Pop removes and returns an arbitrary element of the set.
func (s *Set[T]) Pop() (elem T, ok bool) {
	s.init()
	for e := range s.elems {
		delete(s.elems, e)
		return e, true
	}
	return elem, false
}

// Clear removes every element from the set.
func (s *Set[T]) Clear() {
	s.init()
	s.elems = make(map[T]struct{})
}

// Contains reports whether every item is present in the set.
func (s *Set[T]) Contains(items ...T) bool {
	s.init()
	for _, item := range items {
		if _, ok := s.elems[item]; !ok {
			return false
		}
	}
	return true
}

// ContainsOne reports whether item is present in the set.
func (s *Set[T]) ContainsOne(item T) bool {
	s.init()
	_, ok := s.elems[item]
	return ok
}

// ContainsAny reports whether at least one item is present in the set.
func (s *Set[T]) ContainsAny(items ...T) bool {
	s.init()
	for _, item := range items {
		if _, ok := s.elems[item]; ok {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set has no elements.
func (s *Set[T]) IsEmpty() bool {
	s.init()
	return len(s.elems) == 0
}

// Len returns the number of elements in the set.
func (s *Set[T]) Len() int {
	s.init()
	return len(s.elems)
}

// Equal reports whether s and other contain exactly the same elements.
func (s *Set[T]) Equal(other *Set[T]) bool {
	s.init()
	if other == nil {
		return s.IsEmpty()
	}
	other.init()
	if len(s.elems) != len(other.elems) {
		return false
	}
	for e := range s.elems {
		if _, ok := other.elems[e]; !ok {
			return false
		}
	}
	return true
}

// Range calls f for every element in the set, stopping early if f returns
// false. Iteration order follows Slice's order (sorted if configured with
// WithSorted, arbitrary otherwise).
func (s *Set[T]) Range(f func(T) bool) {
	for _, e := range s.Slice() {
		if !f(e) {
			return
		}
	}
}

// Iter returns a range-over-func iterator, so callers can write
// `for e := range s.Iter() { ... }`.
func (s *Set[T]) Iter() func(yield func(T) bool) {
	return func(yield func(T) bool) {
		s.Range(yield)
	}
}

// IsSubset reports whether every element of s is also in other.
func (s *Set[T]) IsSubset(other *Set[T]) bool {
	s.init()
	other.init()
	for e := range s.elems {
		if _, ok := other.elems[e]; !ok {
			return false
		}
	}
	return true
}

// IsProperSubset reports whether s is a subset of other and the two differ.
func (s *Set[T]) IsProperSubset(other *Set[T]) bool {
	return s.IsSubset(other) && s.Len() != other.Len()
}

// IsSuperset reports whether every element of other is also in s.
func (s *Set[T]) IsSuperset(other *Set[T]) bool {
	return other.IsSubset(s)
}

// IsProperSuperset reports whether s is a superset of other and the two differ.
func (s *Set[T]) IsProperSuperset(other *Set[T]) bool {
	return s.IsSuperset(other) && s.Len() != other.Len()
}

// Difference returns the elements in s that are not in other.
func (s *Set[T]) Difference(other *Set[T]) *Set[T] {
	s.init()
	other.init()
	out := &Set[T]{elems: make(map[T]struct{}), cmp: s.cmp}
	for e := range s.elems {
		if _, ok := other.elems[e]; !ok {
			out.elems[e] = struct{}{}
		}
	}
	return out
}

// SymmetricDifference returns the elements that are in exactly one of s, other.
func (s *Set[T]) SymmetricDifference(other *Set[T]) *Set[T] {
	out := s.Difference(other)
	out.Add(other.Difference(s).Slice()...)
	return out
}

// Union returns the elements that are in either s or other.
func (s *Set[T]) Union(other *Set[T]) *Set[T] {
	s.init()
	other.init()
	out := &Set[T]{elems: make(map[T]struct{}), cmp: s.cmp}
	for e := range s.elems {
		out.elems[e] = struct{}{}
	}
	for e := range other.elems {
		out.elems[e] = struct{}{}
	}
	return out
}

// Intersect returns the elements that are in both s and other.
func (s *Set[T]) Intersect(other *Set[T]) *Set[T] {
	s.init()
	other.init()
	out := &Set[T]{elems: make(map[T]struct{}), cmp: s.cmp}
	for e := range s.elems {
		if _, ok := other.elems[e]; ok {
			out.elems[e] = struct{}{}
		}
	}
	return out
}

// Clone returns an independent copy of s.
func (s *Set[T]) Clone() *Set[T] {
	s.init()
	out := &Set[T]{elems: make(map[T]struct{}, len(s.elems)), cmp: s.cmp}
	for e := range s.elems {
		out.elems[e] = struct{}{}
	}
	return out
}

// Slice returns the set's elements, sorted by the configured comparator if
// any, or in arbitrary map order otherwise.
func (s *Set[T]) Slice() []T {
	s.init()
	out := make([]T, 0, len(s.elems))
	for e := range s.elems {
		out = append(out, e)
	}
	if s.cmp != nil {
		sort.Slice(out, func(i, j int) bool { return s.cmp(out[i], out[j]) < 0 })
	}
	return out
}

// MarshalJSON encodes the set as a JSON array.
func (s *Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes a JSON array into the set, replacing its contents.
func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var in []T
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.Wrap(err, "mapset: decode")
	}
	s.elems = make(map[T]struct{}, len(in))
	s.Add(in...)
	return nil
}
