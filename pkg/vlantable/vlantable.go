package vlantable

import (
	"fmt"
	"sync"

	"github.com/henderiw/intervalset/pkg/interval"
	"github.com/henderiw/intervalset/pkg/intervalset"
)

// MaxVLAN is the highest VLAN id.
const MaxVLAN = 4095

// VLANTable tracks claimed VLAN ids. Ranges are half-open, like everywhere
// else in this module: ClaimRange(100, 200) claims 100 up to and including
// 199.
type VLANTable interface {
	Claim(id int64) error
	ClaimRange(start, end int64) error
	ClaimDynamic() (int64, error)
	Release(id int64) error
	ReleaseRange(start, end int64) error

	IsFree(id int64) bool
	FindFree() (int64, error)

	Count() int
	String() string
}

var reserved = []interval.Interval{
	{Start: 0, End: 1},                 // untagged
	{Start: 1, End: 2},                 // default
	{Start: MaxVLAN, End: MaxVLAN + 1}, // reserved
}

func New() (VLANTable, error) {
	claimed := intervalset.New()
	for _, r := range reserved {
		if err := claimed.AddInterval(r); err != nil {
			return nil, err
		}
	}
	return &vlanTable{
		m:       new(sync.RWMutex),
		claimed: claimed,
	}, nil
}

type vlanTable struct {
	m       *sync.RWMutex
	claimed *intervalset.Set
}

func (r *vlanTable) Claim(id int64) error {
	if err := validateID(id); err != nil {
		return err
	}
	return r.ClaimRange(id, id+1)
}

func (r *vlanTable) ClaimRange(start, end int64) error {
	r.m.Lock()
	defer r.m.Unlock()

	i, err := validate(start, end)
	if err != nil {
		return err
	}
	if r.claimed.Overlaps(i) {
		return fmt.Errorf("vlan range %s is already claimed", i)
	}
	return r.claimed.AddInterval(i)
}

func (r *vlanTable) ClaimDynamic() (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()

	id, err := r.findFree()
	if err != nil {
		return 0, err
	}
	if err := r.claimed.Add(id, id+1); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *vlanTable) Release(id int64) error {
	if err := validateID(id); err != nil {
		return err
	}
	return r.ReleaseRange(id, id+1)
}

func (r *vlanTable) ReleaseRange(start, end int64) error {
	r.m.Lock()
	defer r.m.Unlock()

	i, err := validate(start, end)
	if err != nil {
		return err
	}
	for _, res := range reserved {
		if res.Start < i.End && i.Start < res.End {
			return fmt.Errorf("vlan %d is reserved, cannot be released", res.Start)
		}
	}
	return r.claimed.RemoveInterval(i)
}

func (r *vlanTable) IsFree(id int64) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	if id < 0 || id > MaxVLAN {
		return false
	}
	return !r.claimed.Contains(id)
}

func (r *vlanTable) FindFree() (int64, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.findFree()
}

func (r *vlanTable) findFree() (int64, error) {
	// the reserved ids keep [0, 2) claimed, so the first gap follows the
	// first interval
	rr := r.claimed.Intervals()
	id := rr[0].End
	if id > MaxVLAN {
		return 0, fmt.Errorf("no free vlan found")
	}
	return id, nil
}

// Count returns the number of disjoint claimed ranges, reserved ids included.
func (r *vlanTable) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.claimed.Size()
}

func (r *vlanTable) String() string {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.claimed.String()
}

func validate(start, end int64) (interval.Interval, error) {
	i, err := interval.New(start, end)
	if err != nil {
		return i, err
	}
	if i.IsEmpty() {
		return i, fmt.Errorf("%w: vlan range %s is empty", interval.ErrInvalidRange, i)
	}
	if i.Start < 0 || i.End > MaxVLAN+1 {
		return i, fmt.Errorf("vlan range %s does not fit in 0-%d", i, MaxVLAN)
	}
	return i, nil
}

// validateID checks id before id+1 is formed, so the end of a single id
// range can't overflow.
func validateID(id int64) error {
	if id < 0 || id > MaxVLAN {
		return fmt.Errorf("vlan %d does not fit in 0-%d", id, MaxVLAN)
	}
	return nil
}
