package workload_test

import (
	"context"
	"testing"
	"time"

	"github.com/romshark/todosim/domain"
	"github.com/romshark/todosim/pkg/broadcast"
	"github.com/romshark/todosim/storage"
	"github.com/romshark/todosim/workload"

	"github.com/stretchr/testify/require"
)

func newStore(
	t *testing.T, b *broadcast.Broadcaster[domain.Event],
) *domain.Store {
	t.Helper()
	s, err := domain.New(t.Context(), storage.NewMemory([]byte(`[]`)), b,
		domain.WithDelayPolicy(domain.NoDelay))
	require.NoError(t, err)
	return s
}

func TestStepBroadcastsEverySuccessfulMutation(t *testing.T) {
	b := broadcast.New[domain.Event]()
	broadcasts := 0
	sub := b.Subscribe(func(domain.SequencedMessage) { broadcasts++ })
	defer sub.Close()

	s := newStore(t, b)
	d := workload.New(s, 1, time.Millisecond)

	mutations := 0
	for range 500 {
		op, err := d.Step(t.Context())
		require.NotEmpty(t, op)
		if err != nil {
			require.True(t, domain.IsValidation(err),
				"only validation errors expected with fault injection off")
			continue
		}
		if workload.IsMutation(op) {
			mutations++
		}
	}
	require.Positive(t, mutations, "seed 1 must produce successful mutations")
	require.Equal(t, mutations, broadcasts)

	// The store is left in a consistent, listable state.
	_, err := s.ListAll(t.Context())
	require.NoError(t, err)
}

func TestStepDeterministic(t *testing.T) {
	ops := func(seed uint64) []string {
		s := newStore(t, broadcast.New[domain.Event]())
		d := workload.New(s, seed, time.Millisecond)
		var ops []string
		for range 50 {
			op, _ := d.Step(t.Context())
			ops = append(ops, op)
		}
		return ops
	}
	require.Equal(t, ops(42), ops(42), "same seed, same operation sequence")
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newStore(t, broadcast.New[domain.Event]())
	d := workload.New(s, 7, time.Millisecond)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("driver did not stop on context cancellation")
	}
}

func TestIsMutation(t *testing.T) {
	require.True(t, workload.IsMutation("createList"))
	require.True(t, workload.IsMutation("moveItem"))
	require.False(t, workload.IsMutation("listAll"))
	require.False(t, workload.IsMutation("searchItems"))
}
