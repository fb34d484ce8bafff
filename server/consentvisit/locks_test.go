package consentvisit_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-portal/server/consentvisit"
	"github.com/stretchr/testify/require"
)

func TestLocksSerialiseOneVisit(t *testing.T) {
	locks := consentvisit.NewLocks()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("visit-1")
			defer unlock()

			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), maxActive)
}

func TestLocksIndependentVisits(t *testing.T) {
	locks := consentvisit.NewLocks()

	unlockFirst := locks.Lock("visit-1")
	defer unlockFirst()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("visit-2")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another visit blocked")
	}

	// Released locks can be taken again.
	unlockAgain := locks.Lock("visit-2")
	unlockAgain()
}
