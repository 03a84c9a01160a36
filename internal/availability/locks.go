package availability

import "sync"

// LockTable hands out one mutex per listing so that the
// read-check-then-insert sequence behind a new booking is serialized
// per listing while requests for distinct listings proceed in
// parallel.  The expiry sweeper takes the same mutex before releasing
// an interval, which keeps sweep-driven cancellations from
// interleaving with confirmations on the same listing.
type LockTable struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewLockTable returns an empty lock table.
func NewLockTable() *LockTable {
	return &LockTable{locks: make(map[uint64]*sync.Mutex)}
}

// Acquire locks the mutex for the given listing, creating it on first
// use, and returns the unlock function.  Entries are never reaped: the
// table grows with the number of distinct listings seen by this
// process, which stays small relative to booking traffic.
func (t *LockTable) Acquire(listingID uint64) func() {
	t.mu.Lock()
	l, ok := t.locks[listingID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[listingID] = l
	}
	t.mu.Unlock()
	l.Lock()
	return l.Unlock
}
