package availability

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockTable_SerializesPerListing(t *testing.T) {
	table := NewLockTable()

	// 64 goroutines hammer two listings.  Each counter is a distinct
	// plain int touched only while holding its listing's lock, so the
	// race detector flags any failure of mutual exclusion directly.
	var counters [2]int
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		listingID := uint64(i%2 + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := table.Acquire(listingID)
			defer unlock()
			counters[listingID-1]++
		}()
	}
	wg.Wait()

	require.Equal(t, 32, counters[0])
	require.Equal(t, 32, counters[1])
}

func TestLockTable_ReusesMutexAcrossAcquires(t *testing.T) {
	table := NewLockTable()

	unlock := table.Acquire(7)
	acquired := make(chan struct{})
	go func() {
		u := table.Acquire(7)
		u()
		close(acquired)
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("second acquire succeeded while lock was held")
	default:
	}

	unlock()
	<-acquired
}
