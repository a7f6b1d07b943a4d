package lazy

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"SingletonLab/pkg/errors"
	"SingletonLab/pkg/handle"
	"SingletonLab/pkg/teardown"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type conn struct {
	ready  bool
	closes *atomic.Int32
}

func (c *conn) Close() error {
	c.closes.Inc()
	return nil
}

func TestDoubleCheckedSingleInstanceUnderRace(t *testing.T) {
	stack := teardown.New()
	var calls, closes atomic.Int32
	d := NewDoubleChecked("conn", func() (*conn, error) {
		calls.Inc()
		time.Sleep(10 * time.Millisecond)
		return &conn{ready: true, closes: &closes}, nil
	}, WithTeardown(stack))

	const n = 64
	handles := make([]*handle.Shared[conn], n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			h, err := d.Get()
			if assert.NoError(t, err) {
				assert.True(t, h.Get().ready)
			}
			handles[i] = h
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, h := range handles {
		assert.True(t, handles[0].Same(h))
		assert.Same(t, handles[0].Get(), h.Get())
	}
	// n 个调用方加上持有者自己的根引用
	assert.Equal(t, int64(n+1), handles[0].UseCount())

	for _, h := range handles {
		h.Release()
	}
	assert.Equal(t, int32(0), closes.Load())
	assert.True(t, d.Loaded())
}

func TestDoubleCheckedDestroyedByLastHolder(t *testing.T) {
	stack := teardown.New()
	var closes atomic.Int32
	d := NewDoubleChecked("conn", func() (*conn, error) {
		return &conn{closes: &closes}, nil
	}, WithTeardown(stack))

	h, err := d.Get()
	require.NoError(t, err)

	require.NoError(t, stack.Run(context.Background()))
	assert.False(t, d.Loaded())
	// 调用方仍持有句柄，实例不会被销毁
	assert.Equal(t, int32(0), closes.Load())
	assert.NotNil(t, h.Get())

	assert.True(t, h.Release())
	assert.Equal(t, int32(1), closes.Load())

	_, err = d.Get()
	assert.ErrorIs(t, err, errors.ErrTornDown)
}

func TestDoubleCheckedTeardownWithoutOutstandingHandles(t *testing.T) {
	stack := teardown.New()
	var closes atomic.Int32
	d := NewDoubleChecked("conn", func() (*conn, error) {
		return &conn{closes: &closes}, nil
	}, WithTeardown(stack))

	h, err := d.Get()
	require.NoError(t, err)
	h.Release()
	assert.Equal(t, int32(0), closes.Load())

	require.NoError(t, stack.Run(context.Background()))
	assert.Equal(t, int32(1), closes.Load())
}

func TestDoubleCheckedRetriesAfterFailure(t *testing.T) {
	stack := teardown.New()
	var closes atomic.Int32
	cause := stderrors.New("refused")
	fail := true
	d := NewDoubleChecked("conn", func() (*conn, error) {
		if fail {
			return nil, cause
		}
		return &conn{closes: &closes}, nil
	}, WithTeardown(stack))

	h, err := d.Get()
	assert.Nil(t, h)
	assert.ErrorIs(t, err, cause)
	assert.False(t, d.Loaded())
	assert.Equal(t, 0, stack.Len())

	fail = false
	h, err = d.Get()
	require.NoError(t, err)
	assert.NotNil(t, h.Get())
	assert.Equal(t, 1, stack.Len())
}
