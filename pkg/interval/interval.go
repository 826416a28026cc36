package interval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Interval is a half-open range of integers: Start is included, End is not.
type Interval struct {
	Start int64
	End   int64
}

// New returns the interval [start, end). start may equal end, which yields
// an empty interval.
func New(start, end int64) (Interval, error) {
	i := Interval{Start: start, End: end}
	if err := i.Validate(); err != nil {
		return Interval{}, err
	}
	return i, nil
}

// FromValues builds an interval out of loosely typed input, e.g. a decoded
// yaml or json sequence. vals must hold exactly two integer numbers.
func FromValues(vals []any) (Interval, error) {
	if len(vals) != 2 {
		return Interval{}, fmt.Errorf("%w: expected 2 values, got %d", ErrInvalidInterval, len(vals))
	}
	start, err := toInt64(vals[0])
	if err != nil {
		return Interval{}, err
	}
	end, err := toInt64(vals[1])
	if err != nil {
		return Interval{}, err
	}
	return New(start, end)
}

// Parse parses either the rendered form "[3, 4)" or the short form "3-4".
func Parse(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	var from, to string
	switch {
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, ")"):
		c := strings.IndexByte(s, ',')
		if c == -1 {
			return Interval{}, fmt.Errorf("%w: no comma in interval %q", ErrInvalidInterval, s)
		}
		from, to = s[1:c], s[c+1:len(s)-1]
	case len(s) > 1:
		// skip the first byte so a negative start is not taken as separator
		h := strings.IndexByte(s[1:], '-')
		if h == -1 {
			return Interval{}, fmt.Errorf("%w: no hyphen in interval %q", ErrInvalidInterval, s)
		}
		from, to = s[:h+1], s[h+2:]
	default:
		return Interval{}, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}
	start, err := strconv.ParseInt(strings.TrimSpace(from), 10, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: invalid start %q in interval %q", ErrInvalidInterval, from, s)
	}
	end, err := strconv.ParseInt(strings.TrimSpace(to), 10, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: invalid end %q in interval %q", ErrInvalidInterval, to, s)
	}
	return New(start, end)
}

// Validate returns ErrInvalidRange when Start is bigger then End.
func (r Interval) Validate() error {
	if r.Start > r.End {
		return fmt.Errorf("%w: start %d is bigger then end %d", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// IsEmpty reports whether r holds no points.
func (r Interval) IsEmpty() bool { return r.Start == r.End }

// Len returns the number of points in r.
func (r Interval) Len() int64 { return r.End - r.Start }

// Contains reports whether p lies in r.
func (r Interval) Contains(p int64) bool { return r.Start <= p && p < r.End }

func (r Interval) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Touches reports whether r and other overlap or share an endpoint. The
// endpoints are compared on the closed spans, so [3, 4) touches [4, 5).
func (r Interval) Touches(other Interval) bool {
	switch {
	case other.Start <= r.Start && r.Start <= other.End:
		// r starts inside other
		//
		//   other
		// s------e
		//    s------e
		//       r
		return true
	case other.Start <= r.End && r.End <= other.End:
		// r ends inside other
		//
		//         other
		//      s------e
		//  s------e
		//     r
		return true
	case r.Start < other.Start && other.End < r.End:
		// r entirely covers other
		//
		//       r
		// s-------------e
		//    s------e
		//     other
		return true
	default:
		return false
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return fromUint64(uint64(n))
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return fromUint64(n)
	case float32:
		return fromFloat64(float64(n))
	case float64:
		return fromFloat64(n)
	default:
		return 0, fmt.Errorf("%w: value %v of type %T is not a number", ErrInvalidInterval, v, v)
	}
}

func fromUint64(n uint64) (int64, error) {
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("%w: value %d overflows int64", ErrInvalidInterval, n)
	}
	return int64(n), nil
}

func fromFloat64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: value %v is not an integer", ErrInvalidInterval, f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: value %v overflows int64", ErrInvalidInterval, f)
	}
	return int64(f), nil
}
