package rooms

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardAcquireSerializesMutations(t *testing.T) {
	guard := NewGuard()

	unlock := guard.Acquire(1)

	entered := make(chan struct{})
	go func() {
		innerUnlock := guard.Acquire(1)
		close(entered)
		innerUnlock()
	}()

	select {
	case <-entered:
		t.Fatal("second mutation entered the critical section while the first held the mutex")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("second mutation never acquired the mutex after release")
	}
}

func TestGuardAcquireIsPerTournament(t *testing.T) {
	guard := NewGuard()

	unlock := guard.Acquire(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		otherUnlock := guard.Acquire(2)
		otherUnlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("mutation of another tournament blocked on a foreign mutex")
	}
}

func TestReserveSlotRaceLoserGetsTransientError(t *testing.T) {
	guard := NewGuard()

	var wins, losses atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for playerID := 1; playerID <= 2; playerID++ {
		wg.Add(1)
		go func(playerID int) {
			defer wg.Done()
			<-start
			err := guard.ReserveSlot(1, 1, 1, playerID, DefaultReservationTTL)
			if err == nil {
				wins.Add(1)
			} else if assert.ErrorIs(t, err, ErrSlotTemporarilyLocked) {
				losses.Add(1)
			}
		}(playerID)
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(1), losses.Load())
}

func TestReserveSlotSamePlayerExtends(t *testing.T) {
	guard := NewGuard()

	require.NoError(t, guard.ReserveSlot(1, 1, 1, 7, DefaultReservationTTL))
	assert.NoError(t, guard.ReserveSlot(1, 1, 1, 7, DefaultReservationTTL))
}

func TestReserveSlotExpiredHoldIsReclaimed(t *testing.T) {
	guard := NewGuard()
	moment := time.Now()
	guard.now = func() time.Time { return moment }

	require.NoError(t, guard.ReserveSlot(1, 1, 1, 7, DefaultReservationTTL))

	// Пока резервация жива, другой игрок получает транзиентный отказ
	err := guard.ReserveSlot(1, 1, 1, 8, DefaultReservationTTL)
	assert.ErrorIs(t, err, ErrSlotTemporarilyLocked)

	// Упавший держатель не блокирует слот навсегда: после TTL слот свободен
	moment = moment.Add(DefaultReservationTTL + time.Millisecond)
	assert.NoError(t, guard.ReserveSlot(1, 1, 1, 8, DefaultReservationTTL))
}

func TestReleaseSlotOnlyByOwner(t *testing.T) {
	guard := NewGuard()

	require.NoError(t, guard.ReserveSlot(1, 1, 1, 7, DefaultReservationTTL))

	guard.ReleaseSlot(1, 1, 1, 8)
	err := guard.ReserveSlot(1, 1, 1, 9, DefaultReservationTTL)
	assert.ErrorIs(t, err, ErrSlotTemporarilyLocked)

	guard.ReleaseSlot(1, 1, 1, 7)
	assert.NoError(t, guard.ReserveSlot(1, 1, 1, 9, DefaultReservationTTL))
}

func TestForgetDropsRoomState(t *testing.T) {
	guard := NewGuard()

	require.NoError(t, guard.ReserveSlot(1, 1, 1, 7, time.Hour))
	guard.Forget(1)

	assert.NoError(t, guard.ReserveSlot(1, 1, 1, 8, DefaultReservationTTL))
}
