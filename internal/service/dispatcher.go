package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/metrics"
	"github.com/d60-Lab/social-feed/internal/notify"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

type dispatchJob struct {
	msg   notify.Message
	enqAt time.Time
}

// Dispatcher 本地异步投递通知：事务提交后入队，队列满直接丢弃，不阻塞请求
type Dispatcher struct {
	notifier notify.Notifier
	ch       chan dispatchJob
	timeout  time.Duration
}

func NewDispatcher(notifier notify.Notifier, queueSize int, timeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{notifier: notifier, ch: make(chan dispatchJob, queueSize), timeout: timeout}
}

// Start 启动 workers，返回的 stop 先等队列排空，再等进行中的投递结束，均受 ctx 约束
func (d *Dispatcher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case job := <-d.ch:
					d.deliver(job)
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		tick := time.NewTicker(20 * time.Millisecond)
		defer tick.Stop()
		for len(d.ch) > 0 {
			select {
			case <-ctx.Done():
				close(stopCh)
				logger.Warn("dispatcher stopped with pending notifications", zap.Int("pending", len(d.ch)))
				return ctx.Err()
			case <-tick.C:
			}
		}
		close(stopCh)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			logger.Warn("dispatcher stopped with notifications in flight")
			return ctx.Err()
		}
	}
}

func (d *Dispatcher) deliver(job dispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.notifier.Send(ctx, job.msg); err != nil {
		metrics.DispatchResults.WithLabelValues("failed").Inc()
		logger.Warn("notification failed", zap.String("to", job.msg.To), zap.Error(err))
		return
	}
	metrics.DispatchResults.WithLabelValues("sent").Inc()
	metrics.DispatchLatency.Observe(time.Since(job.enqAt).Seconds())
}

// Enqueue 不阻塞；满了丢弃并告警
func (d *Dispatcher) Enqueue(msg notify.Message) {
	select {
	case d.ch <- dispatchJob{msg: msg, enqAt: time.Now()}:
	default:
		metrics.DispatchResults.WithLabelValues("dropped").Inc()
		logger.Warn("dispatcher queue full, drop notification", zap.String("to", msg.To))
	}
}

// QueueLen 当前队列长度（采样值）
func (d *Dispatcher) QueueLen() int { return len(d.ch) }
