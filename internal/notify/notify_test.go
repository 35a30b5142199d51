package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisQueue(client, "mail:activation"), mr
}

func TestRedisQueue_FIFO(t *testing.T) {
	q, _ := newQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, Activation("a@x.com", "11111111")))
	require.NoError(t, q.Send(ctx, Activation("b@x.com", "22222222")))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	first, err := q.Receive(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", first.To)
	assert.Equal(t, "11111111", first.Payload.Code)
	assert.Equal(t, ActivationSubject, first.Subject)

	second, err := q.Receive(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", second.Payload.Email)
}

func TestRedisQueue_EmptyTimesOut(t *testing.T) {
	q, _ := newQueue(t)
	_, err := q.Receive(context.Background(), 100*time.Millisecond)
	assert.ErrorIs(t, err, ErrEmpty)
}

type flakySender struct {
	mu    sync.Mutex
	fails int
	sent  []Message
	calls int
}

func (f *flakySender) Send(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fails {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestWorker_RetriesThenDelivers(t *testing.T) {
	sender := &flakySender{fails: 2}
	w := NewWorker(nil, sender, 3)
	w.backoff = time.Millisecond

	ok := w.deliver(context.Background(), Activation("a@x.com", "12345678"))
	assert.True(t, ok)
	assert.Equal(t, 3, sender.calls)
	require.Len(t, sender.sent, 1)
}

func TestWorker_GivesUpAfterMaxAttempts(t *testing.T) {
	sender := &flakySender{fails: 10}
	w := NewWorker(nil, sender, 2)
	w.backoff = time.Millisecond

	ok := w.deliver(context.Background(), Activation("a@x.com", "12345678"))
	assert.False(t, ok)
	assert.Equal(t, 2, sender.calls)
}

func TestWorker_RunDrainsQueue(t *testing.T) {
	q, _ := newQueue(t)
	sender := &flakySender{}
	w := NewWorker(q, sender, 1)
	w.poll = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, q.Send(ctx, Activation("a@x.com", "12345678")))

	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		return len(sender.sent) == 1
	}, 2*time.Second, 20*time.Millisecond)
	cancel()
	<-done
}

func TestSMTPSender_Render(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: 2525, From: "noreply@feed.local"})
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		return nil
	}

	require.NoError(t, s.Send(context.Background(), Activation("a@x.com", "87654321")))
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "noreply@feed.local", gotFrom)
	assert.Equal(t, []string{"a@x.com"}, gotTo)
	body := string(gotBody)
	assert.True(t, strings.HasPrefix(body, "From: noreply@feed.local\r\n"))
	assert.Contains(t, body, "Subject: "+ActivationSubject)
	assert.Contains(t, body, "87654321")

	assert.Error(t, s.Send(context.Background(), Message{}))
}
