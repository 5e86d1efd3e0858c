package graph

import (
	"sync"
)

// =============================================================================
// Node List Pool
// =============================================================================

// ListPool recycles the node slices that workers use for their active and
// next-round sets. Every round hands out a fresh slice per worker, so reusing
// the backing arrays keeps the allocation rate flat for long runs.
//
// The pool is safe for concurrent use from multiple goroutines.
type ListPool struct {
	lists sync.Pool
}

var globalPool = &ListPool{
	lists: sync.Pool{
		New: func() any {
			s := make([]*Node, 0, 64)
			return &s
		},
	},
}

// GetPool returns the global list pool.
func GetPool() *ListPool {
	return globalPool
}

// AcquireList obtains an empty node slice from the pool.
func (p *ListPool) AcquireList() *[]*Node {
	return p.lists.Get().(*[]*Node)
}

// ReleaseList returns a node slice to the pool.
//
// The slice is truncated and its elements cleared so pooled slices do not keep
// graphs alive. It is safe to pass nil.
func (p *ListPool) ReleaseList(s *[]*Node) {
	if s == nil {
		return
	}
	clear(*s)
	*s = (*s)[:0]
	p.lists.Put(s)
}
