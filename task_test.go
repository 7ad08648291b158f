package gocoro_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avkonst/gocoro"
)

// TestPingPong is spec.md §8 scenario 1.
func TestPingPong(t *testing.T) {
	rt, err := gocoro.NewRuntime()
	require.NoError(t, err)

	p, err := rt.NewTask(func(self *gocoro.Task, _ ...any) any {
		root := rt.Root()
		w, err := rt.YieldTo(root, 1)
		require.NoError(t, err)
		v := w.(int) + 1
		result, err := rt.YieldTo(root, v)
		require.NoError(t, err)
		return result
	})
	require.NoError(t, err)

	a, err := rt.YieldTo(p, nil)
	require.NoError(t, err)
	require.Equal(t, 1, a)
	require.False(t, p.Done())

	b, err := rt.YieldTo(p, 10)
	require.NoError(t, err)
	require.Equal(t, 11, b)
	require.False(t, p.Done())

	final, err := rt.YieldTo(p, 99)
	require.NoError(t, err)
	require.Equal(t, 99, final)
	require.True(t, p.Done())
	require.Equal(t, 99, p.Result())
}

// TestExitChainCollapse is spec.md §8 scenario 2.
func TestExitChainCollapse(t *testing.T) {
	rt, err := gocoro.NewRuntime()
	require.NoError(t, err)

	var p2 *gocoro.Task
	p1, err := rt.NewTask(func(self *gocoro.Task, _ ...any) any {
		var innerErr error
		p2, innerErr = rt.NewTask(func(*gocoro.Task, ...any) any {
			return 7
		})
		require.NoError(t, innerErr)

		v, yerr := rt.YieldTo(p2, nil)
		require.NoError(t, yerr)
		return v
	})
	require.NoError(t, err)

	v, err := rt.YieldTo(p1, nil)
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.True(t, p2.Done())
	require.True(t, p1.Done())
	require.Equal(t, 7, p1.Result())
	require.Equal(t, 7, p2.Result())
}

// TestSmallStackRejection is spec.md §8 scenario 5.
func TestSmallStackRejection(t *testing.T) {
	rt, err := gocoro.NewRuntime()
	require.NoError(t, err)

	_, err = rt.NewTask(func(*gocoro.Task, ...any) any { return nil }, gocoro.MinStack-1)
	require.Error(t, err)
	require.ErrorIs(t, err, gocoro.ErrStackTooSmall)
}

// TestDoneTaskTransfer is spec.md §8 scenario 6.
func TestDoneTaskTransfer(t *testing.T) {
	rt, err := gocoro.NewRuntime()
	require.NoError(t, err)

	p, err := rt.NewTask(func(*gocoro.Task, ...any) any { return 42 })
	require.NoError(t, err)

	v, err := rt.YieldTo(p, nil)
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.True(t, p.Done())

	// Idempotence of done: yielding to an already-done task returns
	// its result without any further context switch.
	v2, err := rt.YieldTo(p, "whatever")
	require.NoError(t, err)
	require.Equal(t, 42, v2)
}

func TestNewTaskRejectsNilFunc(t *testing.T) {
	rt, err := gocoro.NewRuntime()
	require.NoError(t, err)

	_, err = rt.NewTask(nil)
	require.ErrorIs(t, err, gocoro.ErrTypeMismatch)
}

func TestYieldToSelfRejected(t *testing.T) {
	rt, err := gocoro.NewRuntime()
	require.NoError(t, err)

	_, err = rt.YieldTo(rt.Root())
	require.ErrorIs(t, err, gocoro.ErrSelfTransfer)
}

func TestMultiArgYieldPacksTuple(t *testing.T) {
	rt, err := gocoro.NewRuntime()
	require.NoError(t, err)

	p, err := rt.NewTask(func(_ *gocoro.Task, args ...any) any {
		require.Len(t, args, 3)
		sum := args[0].(int) + args[1].(int) + args[2].(int)
		return sum
	})
	require.NoError(t, err)

	v, err := rt.YieldTo(p, 1, 2, 3)
	require.NoError(t, err)
	require.Equal(t, 6, v)
}
