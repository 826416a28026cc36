package intervaltable

import (
	"github.com/henderiw/intervalset/pkg/intervalset"
	"k8s.io/apimachinery/pkg/labels"
)

// Iterator walks a snapshot of the table in name order.
type Iterator struct {
	current int
	keys    []string
	table   map[string]*entry
}

func (r *Iterator) Name() string {
	return r.keys[r.current]
}

func (r *Iterator) Set() *intervalset.Set {
	return r.table[r.keys[r.current]].set
}

func (r *Iterator) Labels() labels.Set {
	return r.table[r.keys[r.current]].labels
}

func (r *Iterator) Next() bool {
	r.current++
	return r.current < len(r.keys)
}
