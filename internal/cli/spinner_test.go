package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDraws(t *testing.T) {
	var w syncBuffer
	s := newSpinner(&w, "Comparing...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	assert.Contains(t, w.String(), "Comparing...")
	assert.True(t, s.Cancelled())
}

func TestSpinnerParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, &syncBuffer{}, "x")
	s.Start()
	cancel()

	assert.Eventually(t, s.Cancelled, time.Second, 10*time.Millisecond)
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(&syncBuffer{}, "x")
	s.Start()
	s.Stop()
	s.Stop()

	// Stop before Start must not block.
	newSpinner(&syncBuffer{}, "y").Stop()
}

func TestSpinnerStopWithMessage(t *testing.T) {
	var w syncBuffer
	s := newSpinner(&w, "x")
	s.Start()
	s.StopWithError("Diff failed")
	assert.Contains(t, w.String(), "Diff failed")

	s = newSpinner(&w, "x")
	s.Start()
	s.StopWithSuccess("Done")
	assert.Contains(t, w.String(), "Done")
}
