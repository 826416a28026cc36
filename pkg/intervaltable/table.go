package intervaltable

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/henderiw/intervalset/pkg/interval"
	"github.com/henderiw/intervalset/pkg/intervalset"
	"k8s.io/apimachinery/pkg/labels"
)

var (
	ErrNotFound = errors.New("set not found")
	ErrExists   = errors.New("set already exists")
)

type Table interface {
	Create(name string, l labels.Set) error
	Delete(name string) error
	Update(name string, l labels.Set) error

	Add(name string, start, end int64) error
	Remove(name string, start, end int64) error

	Get(name string) (string, labels.Set, error)
	Intervals(name string) ([]interval.Interval, error)
	Contains(name string, p int64) (bool, error)

	Iterate() *Iterator

	Count() int
	Has(name string) bool

	GetAll() map[string]string
	GetByLabel(selector labels.Selector) map[string]string
}

type entry struct {
	set    *intervalset.Set
	labels labels.Set
}

// New returns a table holding an empty set for every name in initEntries.
func New(initEntries map[string]labels.Set) (Table, error) {
	r := &table{
		m:     new(sync.RWMutex),
		table: map[string]*entry{},
	}

	var errm error
	for name, l := range initEntries {
		if err := r.create(name, l); err != nil {
			errm = errors.Join(errm, err)
		}
	}

	return r, errm
}

type table struct {
	m     *sync.RWMutex
	table map[string]*entry
}

func (r *table) Create(name string, l labels.Set) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.create(name, l)
}

func (r *table) Delete(name string) error {
	r.m.Lock()
	defer r.m.Unlock()

	if _, err := r.get(name); err != nil {
		return err
	}
	delete(r.table, name)
	return nil
}

func (r *table) Update(name string, l labels.Set) error {
	r.m.Lock()
	defer r.m.Unlock()

	e, err := r.get(name)
	if err != nil {
		return err
	}
	e.labels = copyLabels(l)
	return nil
}

func (r *table) Add(name string, start, end int64) error {
	r.m.Lock()
	defer r.m.Unlock()

	e, err := r.get(name)
	if err != nil {
		return err
	}
	if err := e.set.Add(start, end); err != nil {
		return fmt.Errorf("set %q: %w", name, err)
	}
	return nil
}

func (r *table) Remove(name string, start, end int64) error {
	r.m.Lock()
	defer r.m.Unlock()

	e, err := r.get(name)
	if err != nil {
		return err
	}
	if err := e.set.Remove(start, end); err != nil {
		return fmt.Errorf("set %q: %w", name, err)
	}
	return nil
}

func (r *table) Get(name string) (string, labels.Set, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	e, err := r.get(name)
	if err != nil {
		return "", nil, err
	}
	return e.set.String(), copyLabels(e.labels), nil
}

func (r *table) Intervals(name string) ([]interval.Interval, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	e, err := r.get(name)
	if err != nil {
		return nil, err
	}
	return e.set.Intervals(), nil
}

func (r *table) Contains(name string, p int64) (bool, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	e, err := r.get(name)
	if err != nil {
		return false, err
	}
	return e.set.Contains(p), nil
}

func (r *table) Iterate() *Iterator {
	r.m.RLock()
	defer r.m.RUnlock()

	keys := make([]string, 0, len(r.table))
	entries := make(map[string]*entry, len(r.table))
	for name, e := range r.table {
		keys = append(keys, name)
		// snapshot, the iterator must not race with later writes
		entries[name] = &entry{set: e.set.Clone(), labels: copyLabels(e.labels)}
	}
	sort.Strings(keys)

	return &Iterator{current: -1, keys: keys, table: entries}
}

func (r *table) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return len(r.table)
}

func (r *table) Has(name string) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	_, ok := r.table[name]
	return ok
}

func (r *table) GetAll() map[string]string {
	return r.GetByLabel(labels.Everything())
}

func (r *table) GetByLabel(selector labels.Selector) map[string]string {
	entries := map[string]string{}

	iter := r.Iterate()
	for iter.Next() {
		if selector.Matches(iter.Labels()) {
			entries[iter.Name()] = iter.Set().String()
		}
	}
	return entries
}

func (r *table) create(name string, l labels.Set) error {
	if name == "" {
		return fmt.Errorf("set name cannot be empty")
	}
	if _, ok := r.table[name]; ok {
		return fmt.Errorf("%w: %q", ErrExists, name)
	}
	r.table[name] = &entry{set: intervalset.New(), labels: copyLabels(l)}
	return nil
}

func (r *table) get(name string) (*entry, error) {
	e, ok := r.table[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e, nil
}

func copyLabels(l labels.Set) labels.Set {
	out := make(labels.Set, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}
