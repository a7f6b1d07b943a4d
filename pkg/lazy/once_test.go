package lazy

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestOnceRetriesAfterError(t *testing.T) {
	var o Once
	calls := 0
	fail := stderrors.New("not yet")

	err := o.Do(func() error { calls++; return fail })
	assert.ErrorIs(t, err, fail)
	assert.False(t, o.Done())

	require.NoError(t, o.Do(func() error { calls++; return nil }))
	assert.True(t, o.Done())

	require.NoError(t, o.Do(func() error { calls++; return nil }))
	assert.Equal(t, 2, calls)
}

func TestOnceRetriesAfterPanic(t *testing.T) {
	var o Once
	assert.Panics(t, func() {
		_ = o.Do(func() error { panic("boom") })
	})
	assert.False(t, o.Done())

	// 锁已释放，可以再次执行
	require.NoError(t, o.Do(func() error { return nil }))
	assert.True(t, o.Done())
}

func TestOnceConcurrentRunsOnce(t *testing.T) {
	var o Once
	var calls atomic.Int32
	start := make(chan struct{})

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			<-start
			assert.NoError(t, o.Do(func() error {
				calls.Inc()
				return nil
			}))
			assert.True(t, o.Done())
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}
