package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStack_PushPopOrder(t *testing.T) {
	s := NewStack(0)
	s.Push(1)
	s.Push(2)
	v, err := s.Pop()
	require.NoError(t, err)
	require.Equal(t, 2, v)
	v, err = s.Pop()
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestStack_PopOnEmptyCallStackIsEmptyStack(t *testing.T) {
	s := NewStack(3)
	_, err := s.Pop()
	require.Error(t, err)
}

func TestStack_GlobalCellsAreZeroInitialized(t *testing.T) {
	s := NewStack(4)
	for i := 0; i < 4; i++ {
		v, err := s.At(i)
		require.NoError(t, err)
		require.Equal(t, 0, v)
	}
}

func TestStack_AtOutOfBoundsAboveSp(t *testing.T) {
	s := NewStack(2)
	s.Push(10)
	_, err := s.At(10)
	require.Error(t, err)
}

func TestStack_CreateAndRecoverFunctionFrame(t *testing.T) {
	s := NewStack(2)
	s.Push(99) // a caller-pushed argument
	s.CreateFunctionFrame(3)

	require.Equal(t, 5, s.Size()) // arg(1) + saved-fp(1) + locals(3)
	fp := s.FP()
	require.NoError(t, s.FpStore(1, 42))
	v, err := s.FpLoad(1)
	require.NoError(t, err)
	require.Equal(t, 42, v)

	require.NoError(t, s.RecoverFunctionFrame())
	require.NotEqual(t, fp, s.FP())
	// only the original argument remains on the call stack
	require.Equal(t, 1, s.Size())
	top, err := s.Pop()
	require.NoError(t, err)
	require.Equal(t, 99, top)
}

func TestStack_FpAddrIsAbsoluteIndex(t *testing.T) {
	s := NewStack(5)
	s.CreateFunctionFrame(2)
	require.Equal(t, s.FP()+1, s.FpAddr(1))
}
