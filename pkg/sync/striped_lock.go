package sync

import (
	"sort"
	base "sync"
)

const (
	hashEntriesPerLock = 200
)

// StripedLock is a partitioned locking mechanism that consistently maps a key
// space to a set of locks. This provides concurrent data access while also
// limiting the total memory footprint.
type StripedLock struct {
	locks    []base.RWMutex
	hashRing *ring
}

// NewStripedLock returns a new StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	if stripes == 0 {
		stripes = 1
	}

	return &StripedLock{
		locks:    make([]base.RWMutex, stripes),
		hashRing: newRing(stripes, hashEntriesPerLock),
	}
}

// Get gets the lock for a key
func (l *StripedLock) Get(key []byte) *base.RWMutex {
	return &l.locks[l.hashRing.shard(key)]
}

// KeyAccess is a key to lock, and whether the caller needs exclusive access
// to it.
type KeyAccess struct {
	Key       []byte
	Exclusive bool
}

// LockAll locks every key at once and returns the function that releases
// them. A stripe is write locked if any of its keys needs exclusive access,
// and read locked otherwise. Stripes are always acquired in index order, so
// concurrent callers with overlapping key sets cannot deadlock.
func (l *StripedLock) LockAll(keys []KeyAccess) (unlock func()) {
	exclusive := make(map[int]bool)
	for _, key := range keys {
		stripe := l.hashRing.shard(key.Key)
		exclusive[stripe] = exclusive[stripe] || key.Exclusive
	}

	stripes := make([]int, 0, len(exclusive))
	for stripe := range exclusive {
		stripes = append(stripes, stripe)
	}
	sort.Ints(stripes)

	for _, stripe := range stripes {
		if exclusive[stripe] {
			l.locks[stripe].Lock()
		} else {
			l.locks[stripe].RLock()
		}
	}

	return func() {
		for i := len(stripes) - 1; i >= 0; i-- {
			if exclusive[stripes[i]] {
				l.locks[stripes[i]].Unlock()
			} else {
				l.locks[stripes[i]].RUnlock()
			}
		}
	}
}
