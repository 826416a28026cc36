package iprangeset

import (
	"math/rand"
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/henderiw/intervalset/pkg/interval"
	"github.com/stretchr/testify/assert"
	"go4.org/netipx"
)

func TestAddRemove(t *testing.T) {
	cases := map[string]struct {
		pool     string
		add      []string
		remove   []string
		expected string
	}{
		"Empty": {
			pool:     "10.0.0.0/24",
			expected: "[Empty range)",
		},
		"Merge": {
			pool:     "10.0.0.0/24",
			add:      []string{"10.0.0.3-10.0.0.3", "10.0.0.10-10.0.0.16", "10.0.0.4-10.0.0.12"},
			expected: "10.0.0.3-10.0.0.16",
		},
		"Split": {
			pool:     "10.0.0.0/24",
			add:      []string{"10.0.0.10-10.0.0.20"},
			remove:   []string{"10.0.0.12-10.0.0.15"},
			expected: "10.0.0.10-10.0.0.11 10.0.0.16-10.0.0.20",
		},
		"IPv6": {
			pool:     "2001:db8::/96",
			add:      []string{"2001:db8::1-2001:db8::ff", "2001:db8::100-2001:db8::1ff"},
			remove:   []string{"2001:db8::-2001:db8::f"},
			expected: "2001:db8::10-2001:db8::1ff",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := NewFromPrefix(netip.MustParsePrefix(tc.pool))
			assert.NoError(t, err)

			for _, a := range tc.add {
				assert.NoError(t, s.AddRange(netipx.MustParseIPRange(a)))
			}
			for _, rm := range tc.remove {
				assert.NoError(t, s.RemoveRange(netipx.MustParseIPRange(rm)))
			}
			assert.Equal(t, tc.expected, s.String())
		})
	}
}

func TestOutOfPool(t *testing.T) {
	s, err := New(netipx.MustParseIPRange("10.0.0.10-10.0.0.20"))
	assert.NoError(t, err)

	assert.NoError(t, s.Add(netip.MustParseAddr("10.0.0.10")))
	assert.Error(t, s.Add(netip.MustParseAddr("10.0.0.21")))
	assert.Error(t, s.AddRange(netipx.MustParseIPRange("10.0.0.15-10.0.0.25")))
	assert.Error(t, s.Add(netip.MustParseAddr("2001:db8::1")))
	assert.Error(t, s.Add(netip.Addr{}))

	assert.True(t, s.Contains(netip.MustParseAddr("10.0.0.10")))
	assert.False(t, s.Contains(netip.MustParseAddr("10.0.0.21")))
	assert.Equal(t, 1, s.Size())
}

func TestParseRange(t *testing.T) {
	cases := map[string]struct {
		s           string
		expected    string
		expectedErr error
	}{
		"IPv4":          {s: "10.0.0.1-10.0.0.9", expected: "10.0.0.1-10.0.0.9"},
		"Single":        {s: "10.0.0.5-10.0.0.5", expected: "10.0.0.5-10.0.0.5"},
		"IPv6":          {s: "2001:db8::1-2001:db8::ff", expected: "2001:db8::1-2001:db8::ff"},
		"Reversed":      {s: "10.0.0.9-10.0.0.1", expectedErr: interval.ErrInvalidRange},
		"NoHyphen":      {s: "nope", expectedErr: interval.ErrInvalidInterval},
		"BadAddress":    {s: "10.0.0.1-10.0.0.x", expectedErr: interval.ErrInvalidInterval},
		"MixedFamilies": {s: "10.0.0.1-2001:db8::1", expectedErr: interval.ErrInvalidInterval},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := ParseRange(tc.s)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, r.String())
		})
	}
}

func TestPoolTooBig(t *testing.T) {
	_, err := NewFromPrefix(netip.MustParsePrefix("2001:db8::/32"))
	assert.Error(t, err)

	_, err = New(netipx.IPRange{})
	assert.Error(t, err)
}

func TestFindFree(t *testing.T) {
	s, err := New(netipx.MustParseIPRange("10.0.0.10-10.0.0.13"))
	assert.NoError(t, err)

	for _, want := range []string{"10.0.0.10", "10.0.0.11", "10.0.0.12", "10.0.0.13"} {
		a, err := s.FindFree()
		assert.NoError(t, err)
		assert.Equal(t, want, a.String())
		assert.NoError(t, s.Add(a))
	}
	_, err = s.FindFree()
	assert.Error(t, err)

	assert.NoError(t, s.Remove(netip.MustParseAddr("10.0.0.10")))
	a, err := s.FindFree()
	assert.NoError(t, err)
	assert.Equal(t, "10.0.0.10", a.String())
}

func TestPrefix(t *testing.T) {
	s, err := NewFromPrefix(netip.MustParsePrefix("192.168.0.0/16"))
	assert.NoError(t, err)

	assert.NoError(t, s.AddPrefix(netip.MustParsePrefix("192.168.1.0/24")))
	assert.NoError(t, s.AddPrefix(netip.MustParsePrefix("192.168.2.0/24")))
	assert.NoError(t, s.RemovePrefix(netip.MustParsePrefix("192.168.1.128/25")))

	var got []string
	s.Print(func(msg string) { got = append(got, msg) })
	assert.Equal(t, []string{"192.168.1.0-192.168.1.127 192.168.2.0-192.168.2.255"}, got)
}

// TestAgainstNetipx compares random operations with netipx.IPSetBuilder,
// which normalizes inclusive ranges the same way.
func TestAgainstNetipx(t *testing.T) {
	pool := netipx.MustParseIPRange("10.0.0.0-10.0.3.255")
	s, err := New(pool)
	assert.NoError(t, err)

	var b netipx.IPSetBuilder
	r := rand.New(rand.NewSource(0))

	for n := 0; n < 300; n++ {
		from := calculateIPFromIndex(pool.From(), r.Int63n(1024))
		to := calculateIPFromIndex(from, r.Int63n(64))
		if !pool.Contains(to) {
			to = pool.To()
		}
		ipr := netipx.IPRangeFrom(from, to)

		if r.Intn(3) == 0 {
			assert.NoError(t, s.RemoveRange(ipr))
			b.RemoveRange(ipr)
		} else {
			assert.NoError(t, s.AddRange(ipr))
			b.AddRange(ipr)
		}

		want, err := b.IPSet()
		assert.NoError(t, err)
		if diff := cmp.Diff(rangeStrings(want.Ranges()), rangeStrings(s.Ranges())); diff != "" {
			t.Fatalf("op %d: -want, +got:\n%s", n, diff)
		}
	}
}

func rangeStrings(rr []netipx.IPRange) []string {
	out := make([]string, 0, len(rr))
	for _, r := range rr {
		out = append(out, r.String())
	}
	return out
}
