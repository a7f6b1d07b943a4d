package teardown

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestRunIsLIFOAndOnce(t *testing.T) {
	s := New()
	var order []string
	for _, name := range []string{"config", "logger", "session"} {
		name := name
		require.NoError(t, s.Push(name, func() error {
			order = append(order, name)
			return nil
		}))
	}
	assert.Equal(t, 3, s.Len())

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"session", "logger", "config"}, order)
	assert.True(t, s.Done())

	require.NoError(t, s.Run(context.Background()))
	assert.Len(t, order, 3)
}

func TestRunCollectsErrors(t *testing.T) {
	s := New()
	first := stderrors.New("first")
	second := stderrors.New("second")
	ran := 0
	_ = s.Push("a", func() error { ran++; return first })
	_ = s.Push("b", func() error { ran++; return nil })
	_ = s.Push("c", func() error { ran++; return second })

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, ran)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestRunSkipsAfterCancel(t *testing.T) {
	s := New()
	ran := false
	_ = s.Push("late", func() error { ran = true; return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestPushAfterRunDestroysImmediately(t *testing.T) {
	s := New()
	require.NoError(t, s.Run(context.Background()))

	ran := false
	require.NoError(t, s.Push("straggler", func() error { ran = true; return nil }))
	assert.True(t, ran)
	assert.Equal(t, 0, s.Len())
}
