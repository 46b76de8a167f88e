package sweep

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saehuihwang/cyclic-voltammetry/pkg/frontend"
	"github.com/saehuihwang/cyclic-voltammetry/pkg/transport"
)

func TestDispatcher_RunStopsOnContextCancel(t *testing.T) {
	d, _, fe := newTestDispatcher()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not shut down after context cancellation")
	}

	assert.Equal(t, frontend.RestCode, fe.last())
}

func TestDispatcher_RunShutsDownMidSweep(t *testing.T) {
	tr := transport.NewLoopback()
	fe := &fakeFrontEnd{}

	// A real-speed sweep: 2 s total over 8 steps gives 125 ms holds, so
	// cancellation arrives well before completion.
	p := testParams(-1.0, -0.99, 1)
	p.SetSweepTime(2)
	d := NewDispatcher(tr, fe, p)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	tr.Push(OpStartPause)
	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not shut down during an active sweep")
	}

	// The sweep was abandoned mid-ramp and the output parked.
	samples := sampleLines(tr.Lines())
	require.NotEmpty(t, samples)
	assert.Less(t, len(samples), 16)
	assert.NotContains(t, tr.Lines(), completionMarker)
	assert.Equal(t, frontend.RestCode, fe.last())
}
