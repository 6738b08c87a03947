package ticketing

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_Runs(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	done := make(chan struct{})
	s.After(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
	require.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, time.Millisecond)
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var ran atomic.Bool
	cancel := s.After(50*time.Millisecond, func() { ran.Store(true) })
	require.Equal(t, 1, s.Pending())

	require.True(t, cancel())
	require.False(t, cancel(), "second cancel has nothing to cancel")
	require.Equal(t, 0, s.Pending())

	time.Sleep(100 * time.Millisecond)
	require.False(t, ran.Load())
}

func TestScheduler_Stop(t *testing.T) {
	s := NewScheduler()

	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		s.After(50*time.Millisecond, func() { ran.Add(1) })
	}

	require.Equal(t, 3, s.Stop())
	require.Equal(t, 0, s.Pending())

	cancel := s.After(time.Millisecond, func() { ran.Add(1) })
	require.False(t, cancel())

	time.Sleep(100 * time.Millisecond)
	require.Zero(t, ran.Load())
}
