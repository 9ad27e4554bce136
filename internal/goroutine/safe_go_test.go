package goroutine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type captureLogger struct {
	mu    sync.Mutex
	lines []string
	done  chan struct{}
}

func (l *captureLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
	l.mu.Unlock()
	close(l.done)
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	log := &captureLogger{done: make(chan struct{})}
	rh := NewRecoveryHandler(log)

	rh.SafeGo(func() { panic("boom") })

	select {
	case <-log.done:
	case <-time.After(time.Second):
		t.Fatal("panic was not reported")
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	assert.Len(t, log.lines, 1)
	assert.Contains(t, log.lines[0], "boom")
}

func TestSafeGoWithContext_PassesContext(t *testing.T) {
	rh := NewRecoveryHandler(&captureLogger{done: make(chan struct{})})
	ctx := context.WithValue(context.Background(), struct{}{}, "v")

	got := make(chan context.Context, 1)
	rh.SafeGoWithContext(ctx, func(c context.Context) { got <- c })

	select {
	case c := <-got:
		assert.Equal(t, ctx, c)
	case <-time.After(time.Second):
		t.Fatal("function was not run")
	}
}
