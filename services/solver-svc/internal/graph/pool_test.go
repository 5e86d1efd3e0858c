package graph

import (
	"sync"
	"testing"
)

func TestListPool_AcquireRelease(t *testing.T) {
	pool := GetPool()

	l := pool.AcquireList()
	if l == nil {
		t.Fatal("AcquireList returned nil")
	}
	if len(*l) != 0 {
		t.Errorf("acquired list len = %d, want 0", len(*l))
	}

	n := &Node{Index: 3}
	*l = append(*l, n, n)
	backing := (*l)[:2]

	pool.ReleaseList(l)

	if len(*l) != 0 {
		t.Errorf("released list len = %d, want 0", len(*l))
	}
	if backing[0] != nil || backing[1] != nil {
		t.Error("released list should not retain node pointers")
	}
}

func TestListPool_ReleaseNil(t *testing.T) {
	GetPool().ReleaseList(nil)
}

func TestListPool_Concurrent(t *testing.T) {
	pool := GetPool()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l := pool.AcquireList()
				*l = append(*l, &Node{Index: id})
				pool.ReleaseList(l)
			}
		}(i)
	}
	wg.Wait()
}
