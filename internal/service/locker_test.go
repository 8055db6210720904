package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Locker = (*KeyedMutex)(nil)
	_ Locker = (*RedisLocker)(nil)
	_ Locker = passThroughLocker{}
)

func TestLocker_ReleaseFromInterface(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	lockers := map[string]Locker{
		"in-process": NewKeyedMutex(),
		"redis":      NewRedisLocker(client, "lock:", time.Second),
	}
	for name, locker := range lockers {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 2; i++ {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				unlock, err := locker.Lock(ctx, "payment:7")
				cancel()
				require.NoError(t, err)
				require.NotNil(t, unlock)
				unlock()
			}
		})
	}
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(context.Background(), "payment:1")
			require.NoError(t, err)
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, m.size())
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	m := NewKeyedMutex()

	unlockA, err := m.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := m.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()

	assert.Equal(t, 1, m.size())
}

func TestKeyedMutex_ContextCancel(t *testing.T) {
	m := NewKeyedMutex()

	unlock, err := m.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()
	assert.Zero(t, m.size())

	unlock, err = m.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
}

func newRedisLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLocker(client, "emi:lock:", ttl), mr
}

func TestRedisLocker_LockAndRelease(t *testing.T) {
	locker, mr := newRedisLocker(t, time.Second)

	unlock, err := locker.Lock(context.Background(), "payment:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("emi:lock:payment:1"))

	unlock()
	assert.False(t, mr.Exists("emi:lock:payment:1"))
}

func TestRedisLocker_WaitsForHolder(t *testing.T) {
	locker, _ := newRedisLocker(t, time.Second)

	unlock, err := locker.Lock(context.Background(), "payment:1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		second, err := locker.Lock(context.Background(), "payment:1")
		if err == nil {
			second()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lock")
	case <-time.After(60 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired the lock")
	}
}

func TestRedisLocker_TimesOut(t *testing.T) {
	locker, _ := newRedisLocker(t, 80*time.Millisecond)

	unlock, err := locker.Lock(context.Background(), "payment:1")
	require.NoError(t, err)
	defer unlock()

	// miniredis does not expire keys on its own, so the holder stays
	_, err = locker.Lock(context.Background(), "payment:1")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestRedisLocker_UnlockKeepsForeignToken(t *testing.T) {
	locker, mr := newRedisLocker(t, time.Second)

	unlock, err := locker.Lock(context.Background(), "payment:1")
	require.NoError(t, err)

	// lease expired and another replica took the key
	require.NoError(t, mr.Set("emi:lock:payment:1", "someone-else"))
	unlock()

	got, err := mr.Get("emi:lock:payment:1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
