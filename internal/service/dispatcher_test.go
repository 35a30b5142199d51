package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-feed/internal/notify"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (c *captureNotifier) Send(_ context.Context, msg notify.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func TestDispatcher_DeliversAndDrains(t *testing.T) {
	n := &captureNotifier{}
	d := NewDispatcher(n, 16, time.Second)
	stop := d.Start(2)

	for i := 0; i < 10; i++ {
		d.Enqueue(notify.Activation("a@x.com", "12345678"))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, stop(ctx))
	assert.Eventually(t, func() bool { return n.count() == 10 }, time.Second, 10*time.Millisecond)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	n := &captureNotifier{}
	d := NewDispatcher(n, 2, time.Second)
	// 不启动 worker，队列只能放两条
	for i := 0; i < 5; i++ {
		d.Enqueue(notify.Activation("a@x.com", "12345678"))
	}
	assert.Equal(t, 2, d.QueueLen())
}

func TestDispatcher_SinkFailureIsAbsorbed(t *testing.T) {
	n := &captureNotifier{err: errors.New("smtp down")}
	d := NewDispatcher(n, 4, time.Second)
	stop := d.Start(1)
	d.Enqueue(notify.Activation("a@x.com", "12345678"))
	require.NoError(t, stop(context.Background()))
	assert.Equal(t, 0, n.count())
}

// gateNotifier 在 release 关闭前阻塞 Send
type gateNotifier struct {
	started chan struct{}
	release chan struct{}
	done    chan struct{}
}

func newGateNotifier() *gateNotifier {
	return &gateNotifier{started: make(chan struct{}), release: make(chan struct{}), done: make(chan struct{})}
}

func (g *gateNotifier) Send(ctx context.Context, _ notify.Message) error {
	close(g.started)
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	close(g.done)
	return nil
}

func TestDispatcher_StopWaitsForInFlightDelivery(t *testing.T) {
	g := newGateNotifier()
	d := NewDispatcher(g, 4, 5*time.Second)
	stop := d.Start(1)
	d.Enqueue(notify.Activation("a@x.com", "12345678"))
	<-g.started
	require.Zero(t, d.QueueLen())

	go func() {
		time.Sleep(100 * time.Millisecond)
		close(g.release)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, stop(ctx))

	select {
	case <-g.done:
	default:
		t.Fatal("stop returned before the in-flight delivery finished")
	}
}

func TestDispatcher_StopBoundedByContext(t *testing.T) {
	g := newGateNotifier()
	d := NewDispatcher(g, 4, 5*time.Second)
	stop := d.Start(1)
	d.Enqueue(notify.Activation("a@x.com", "12345678"))
	<-g.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, stop(ctx), context.DeadlineExceeded)
	close(g.release)
}
