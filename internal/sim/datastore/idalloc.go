package datastore

import "fmt"

// IDAllocator hands out row ids in [1, MaxID). Id 0 is reserved as padding.
//
// The free pool is a LIFO list so issuance order depends only on the sequence
// of Allocate/Free/Expand calls.
type IDAllocator struct {
	maxID int
	free  []int
	inUse []bool
}

func NewIDAllocator(maxID int) *IDAllocator {
	a := &IDAllocator{maxID: 1, inUse: []bool{true}}
	a.Expand(maxID)
	return a
}

func (a *IDAllocator) MaxID() int { return a.maxID }

func (a *IDAllocator) Full() bool { return len(a.free) == 0 }

func (a *IDAllocator) Available() int { return len(a.free) }

func (a *IDAllocator) InUse(id int) bool {
	if id <= 0 || id >= a.maxID {
		return false
	}
	return a.inUse[id]
}

func (a *IDAllocator) Allocate() int {
	if len(a.free) == 0 {
		panic("datastore: allocate from exhausted id pool")
	}
	id := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	a.inUse[id] = true
	return id
}

func (a *IDAllocator) Free(id int) {
	if !a.InUse(id) {
		panic(fmt.Sprintf("datastore: free of id %d not in use", id))
	}
	a.inUse[id] = false
	a.free = append(a.free, id)
}

// Expand adds [MaxID, maxID) to the pool. The lowest new id is issued first.
func (a *IDAllocator) Expand(maxID int) {
	if maxID <= a.maxID {
		return
	}
	for id := maxID - 1; id >= a.maxID; id-- {
		a.free = append(a.free, id)
	}
	grown := make([]bool, maxID)
	copy(grown, a.inUse)
	a.inUse = grown
	a.maxID = maxID
}
