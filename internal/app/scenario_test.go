package app

import (
	"bytes"
	"testing"
	"time"

	"SingletonLab/pkg/errors"
	"SingletonLab/pkg/global"
	"SingletonLab/pkg/lazy"
	"SingletonLab/pkg/teardown"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestRunRaceSingleDerived(t *testing.T) {
	// 排在最前，goroutine 竞争的是 Derived 的首次构造
	require.Equal(t, int32(0), derivedBuilt.Load())

	var buf bytes.Buffer
	res, err := RunRace(&buf, 32)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Distinct)
	assert.GreaterOrEqual(t, res.Requests, int64(32))
	assert.Equal(t, int32(1), derivedBuilt.Load())
}

func TestRunDerivedSameInstance(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, RunDerived(&buf))
	assert.Contains(t, buf.String(), "same=true")
	assert.Contains(t, buf.String(), DerivedInstance().ID.String())
}

type raceTarget struct {
	_ lazy.NoCopy

	id uuid.UUID
}

func TestRaceFirstAccessConstructsOnce(t *testing.T) {
	var calls atomic.Int32
	base := lazy.NewBase("race-target", func(tok lazy.Token[raceTarget]) (*raceTarget, error) {
		if err := tok.Verify(); err != nil {
			return nil, err
		}
		calls.Inc()
		time.Sleep(5 * time.Millisecond)
		return &raceTarget{id: uuid.New()}, nil
	}, lazy.WithTeardown(teardown.New()))
	require.False(t, base.Loaded())

	ids := make([]uuid.UUID, 64)
	distinct := raceFirstAccess(len(ids), func(i int) *raceTarget {
		v := base.MustInstance()
		ids[i] = v.id
		return v
	})

	assert.Equal(t, 1, distinct)
	assert.Equal(t, int32(1), calls.Load())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestRunGlobalScenario(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RunGlobal(&buf))
	assert.Contains(t, buf.String(), "after New: a=1 b=2")
	assert.Contains(t, buf.String(), "after Delete: present=false")
	assert.Nil(t, global.Get[Foo]())
}

func TestDerivedConstructorRejectsForgedToken(t *testing.T) {
	d, err := newDerived(lazy.Token[Derived]{})
	assert.Nil(t, d)
	assert.ErrorIs(t, err, errors.ErrForgedToken)
}
