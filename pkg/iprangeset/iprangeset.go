// Package iprangeset tracks sets of IP addresses out of a single pool. Each
// address is stored as its offset from the start of the pool, so the heavy
// lifting is done by intervalset.
package iprangeset

import (
	"fmt"
	"math"
	"math/big"
	"net/netip"
	"strings"

	"github.com/henderiw/intervalset/pkg/interval"
	"github.com/henderiw/intervalset/pkg/intervalset"
	"go4.org/netipx"
)

// Set is not goroutine safe.
type Set struct {
	pool netipx.IPRange
	size int64 // number of addresses in pool
	set  *intervalset.Set
}

func New(pool netipx.IPRange) (*Set, error) {
	if !pool.IsValid() {
		return nil, fmt.Errorf("invalid pool %s", pool.String())
	}
	size := new(big.Int).Sub(ipToInt(pool.To()), ipToInt(pool.From()))
	size.Add(size, big.NewInt(1))
	if size.Cmp(big.NewInt(math.MaxInt64)) > 0 {
		return nil, fmt.Errorf("pool %s is too big, max %d addresses", pool.String(), int64(math.MaxInt64))
	}
	return &Set{
		pool: pool,
		size: size.Int64(),
		set:  intervalset.New(),
	}, nil
}

func NewFromPrefix(p netip.Prefix) (*Set, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("invalid prefix %s", p.String())
	}
	return New(netipx.RangeOfPrefix(p.Masked()))
}

// ParseRange parses an inclusive range "10.0.0.1-10.0.0.9". A malformed
// string yields interval.ErrInvalidInterval, a range whose start comes after
// its end yields interval.ErrInvalidRange.
func ParseRange(s string) (netipx.IPRange, error) {
	h := strings.IndexByte(s, '-')
	if h == -1 {
		return netipx.IPRange{}, fmt.Errorf("%w: no hyphen in ip range %q", interval.ErrInvalidInterval, s)
	}
	from, err := netip.ParseAddr(s[:h])
	if err != nil {
		return netipx.IPRange{}, fmt.Errorf("%w: invalid from address in ip range %q: %s", interval.ErrInvalidInterval, s, err)
	}
	to, err := netip.ParseAddr(s[h+1:])
	if err != nil {
		return netipx.IPRange{}, fmt.Errorf("%w: invalid to address in ip range %q: %s", interval.ErrInvalidInterval, s, err)
	}
	if from.BitLen() != to.BitLen() || from.Zone() != to.Zone() {
		return netipx.IPRange{}, fmt.Errorf("%w: mixed address families in ip range %q", interval.ErrInvalidInterval, s)
	}
	if to.Less(from) {
		return netipx.IPRange{}, fmt.Errorf("%w: from %s is bigger then to %s", interval.ErrInvalidRange, from, to)
	}
	return netipx.IPRangeFrom(from, to), nil
}

// Pool returns the range of addresses s draws from.
func (s *Set) Pool() netipx.IPRange { return s.pool }

func (s *Set) Add(addr netip.Addr) error {
	return s.AddRange(netipx.IPRangeFrom(addr, addr))
}

func (s *Set) Remove(addr netip.Addr) error {
	return s.RemoveRange(netipx.IPRangeFrom(addr, addr))
}

func (s *Set) AddPrefix(p netip.Prefix) error {
	if !p.IsValid() {
		return fmt.Errorf("invalid prefix %s", p.String())
	}
	return s.AddRange(netipx.RangeOfPrefix(p.Masked()))
}

func (s *Set) RemovePrefix(p netip.Prefix) error {
	if !p.IsValid() {
		return fmt.Errorf("invalid prefix %s", p.String())
	}
	return s.RemoveRange(netipx.RangeOfPrefix(p.Masked()))
}

// AddRange adds the inclusive range r to s.
func (s *Set) AddRange(r netipx.IPRange) error {
	i, err := s.toInterval(r)
	if err != nil {
		return err
	}
	return s.set.AddInterval(i)
}

// RemoveRange removes the inclusive range r from s.
func (s *Set) RemoveRange(r netipx.IPRange) error {
	i, err := s.toInterval(r)
	if err != nil {
		return err
	}
	return s.set.RemoveInterval(i)
}

func (s *Set) Contains(addr netip.Addr) bool {
	if !s.pool.Contains(addr) {
		return false
	}
	return s.set.Contains(calculateIndex(addr, s.pool.From()))
}

// Ranges returns the minimal, sorted list of ranges covering s.
func (s *Set) Ranges() []netipx.IPRange {
	rr := s.set.Intervals()
	out := make([]netipx.IPRange, 0, len(rr))
	for _, i := range rr {
		out = append(out, netipx.IPRangeFrom(
			calculateIPFromIndex(s.pool.From(), i.Start),
			calculateIPFromIndex(s.pool.From(), i.End-1),
		))
	}
	return out
}

// Size returns the number of disjoint ranges in s.
func (s *Set) Size() int { return s.set.Size() }

// FindFree returns the lowest address of the pool that is not in s.
func (s *Set) FindFree() (netip.Addr, error) {
	id := int64(0)
	rr := s.set.Intervals()
	if len(rr) > 0 && rr[0].Start == 0 {
		id = rr[0].End
	}
	if id >= s.size {
		return netip.Addr{}, fmt.Errorf("no free address in pool %s", s.pool.String())
	}
	return calculateIPFromIndex(s.pool.From(), id), nil
}

func (s *Set) String() string {
	if s.set.IsEmpty() {
		return intervalset.EmptyRange
	}
	rr := s.Ranges()
	parts := make([]string, 0, len(rr))
	for _, r := range rr {
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

func (s *Set) toInterval(r netipx.IPRange) (interval.Interval, error) {
	if !r.IsValid() {
		return interval.Interval{}, fmt.Errorf("%w: ip range %s", interval.ErrInvalidRange, r.String())
	}
	if !s.pool.Contains(r.From()) || !s.pool.Contains(r.To()) {
		return interval.Interval{}, fmt.Errorf("ip range %s, does not fit in the range from %s to %s",
			r.String(), s.pool.From().String(), s.pool.To().String())
	}
	return interval.Interval{
		Start: calculateIndex(r.From(), s.pool.From()),
		End:   calculateIndex(r.To(), s.pool.From()) + 1,
	}, nil
}

func calculateIndex(ip, start netip.Addr) int64 {
	return new(big.Int).Sub(ipToInt(ip), ipToInt(start)).Int64()
}

func ipToInt(ip netip.Addr) *big.Int {
	b := ip.As16()
	return new(big.Int).SetBytes(b[:])
}

func calculateIPFromIndex(startIP netip.Addr, id int64) netip.Addr {
	ipInt := new(big.Int).Add(ipToInt(startIP), big.NewInt(id))

	var ip16 [16]byte
	ipInt.FillBytes(ip16[:])

	if startIP.Is4() {
		return netip.AddrFrom4(netip.AddrFrom16(ip16).As4())
	}
	return netip.AddrFrom16(ip16)
}
