// Package intervalset maintains a set of integers as the minimal, sorted list
// of disjoint half-open intervals that covers it.
//
// A Set is not goroutine safe, callers sharing one across goroutines must
// serialize access themselves (see the intervaltable package).
package intervalset

import (
	"strings"

	"github.com/henderiw/intervalset/pkg/interval"
)

// EmptyRange is what an empty set renders as.
const EmptyRange = "[Empty range)"

// Set is a set of integers. The zero value is an empty set ready to use.
type Set struct {
	// rr holds the intervals of the set. They are normalized: sorted by
	// start, none empty, and for neighbours rr[i].End < rr[i+1].Start, so
	// touching intervals are always merged. The methods below rely on it.
	rr []interval.Interval
}

// New returns an empty Set.
func New() *Set {
	return &Set{}
}

// Add inserts [start, end) into s.
func (s *Set) Add(start, end int64) error {
	return s.AddInterval(interval.Interval{Start: start, End: end})
}

// AddInterval inserts i into s, merging it with every interval it overlaps
// or touches.
func (s *Set) AddInterval(i interval.Interval) error {
	if err := i.Validate(); err != nil {
		return err
	}
	if i.IsEmpty() {
		return nil
	}

	acc := i
	out := make([]interval.Interval, 0, len(s.rr)+1)
	for _, cur := range s.rr {
		if !acc.Touches(cur) {
			out = append(out, cur)
			continue
		}
		// absorb cur into the accumulated range
		//
		//     acc
		//  s-------e
		//      s------e
		//        cur
		acc.Start = min(acc.Start, cur.Start)
		acc.End = max(acc.End, cur.End)
	}

	s.rr = insert(out, acc)
	return nil
}

// insert places acc before the first interval starting after it. rr is
// sorted and none of its intervals touch acc.
func insert(rr []interval.Interval, acc interval.Interval) []interval.Interval {
	idx := len(rr)
	for n, r := range rr {
		if r.Start > acc.End {
			idx = n
			break
		}
	}
	rr = append(rr, interval.Interval{})
	copy(rr[idx+1:], rr[idx:])
	rr[idx] = acc
	return rr
}

// Remove deletes every point of [start, end) from s.
func (s *Set) Remove(start, end int64) error {
	return s.RemoveInterval(interval.Interval{Start: start, End: end})
}

// RemoveInterval deletes every point of i from s. Intervals that straddle a
// boundary of i are trimmed, an interval covering i is split in two.
func (s *Set) RemoveInterval(i interval.Interval) error {
	if err := i.Validate(); err != nil {
		return err
	}
	if i.IsEmpty() {
		return nil
	}

	out := make([]interval.Interval, 0, len(s.rr)+1)
	for _, cur := range s.rr {
		if i.Start > cur.Start {
			// keep what lies left of i
			//
			//       cur
			//  s----------e
			//        s-------e
			//            i
			left := interval.Interval{Start: cur.Start, End: min(i.Start, cur.End)}
			if !left.IsEmpty() {
				out = append(out, left)
			}
		}
		if i.End < cur.End {
			// keep what lies right of i
			//
			//          cur
			//      s----------e
			//  s-------e
			//      i
			right := interval.Interval{Start: max(i.End, cur.Start), End: cur.End}
			if !right.IsEmpty() {
				out = append(out, right)
			}
		}
	}
	s.rr = out
	return nil
}

// Size returns the number of disjoint intervals in s.
func (s *Set) Size() int { return len(s.rr) }

// IsEmpty reports whether s holds no points.
func (s *Set) IsEmpty() bool { return s == nil || len(s.rr) == 0 }

// Intervals returns a copy of the intervals in s, in ascending order.
func (s *Set) Intervals() []interval.Interval {
	return append([]interval.Interval{}, s.rr...)
}

// Contains reports whether point p is in s.
func (s *Set) Contains(p int64) bool {
	for _, r := range s.rr {
		if r.Start > p {
			return false
		}
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// Covers reports whether every point of i is in s. The empty interval is
// covered by any set.
func (s *Set) Covers(i interval.Interval) bool {
	if i.IsEmpty() {
		return true
	}
	for _, r := range s.rr {
		// rr is normalized, so i must fit a single interval
		if r.Start <= i.Start && i.End <= r.End {
			return true
		}
	}
	return false
}

// Overlaps reports whether any point of i is in s.
func (s *Set) Overlaps(i interval.Interval) bool {
	for _, r := range s.rr {
		if r.Start >= i.End {
			return false
		}
		if i.Start < r.End && !i.IsEmpty() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of s.
func (s *Set) Clone() *Set {
	return &Set{rr: s.Intervals()}
}

// Equal reports whether s and other hold the same points. A nil Set equals
// an empty one.
func (s *Set) Equal(other *Set) bool {
	if s == nil || other == nil {
		return s.IsEmpty() && other.IsEmpty()
	}
	if len(s.rr) != len(other.rr) {
		return false
	}
	for n := range s.rr {
		if s.rr[n] != other.rr[n] {
			return false
		}
	}
	return true
}

// String renders s as "[3, 4) [10, 17)", or EmptyRange when s is empty.
func (s *Set) String() string {
	if len(s.rr) == 0 {
		return EmptyRange
	}
	parts := make([]string, 0, len(s.rr))
	for _, r := range s.rr {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, " ")
}

// Print hands the rendering of s to sink.
func (s *Set) Print(sink func(string)) {
	if sink == nil {
		return
	}
	sink(s.String())
}
