package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/pkg/logger"
)

// Source 待发邮件来源
type Source interface {
	Receive(ctx context.Context, timeout time.Duration) (Message, error)
}

// Worker 从队列取信并发送，有限次重试，失败只记日志
type Worker struct {
	src         Source
	sender      Notifier
	maxAttempts int
	backoff     time.Duration
	poll        time.Duration
}

func NewWorker(src Source, sender Notifier, maxAttempts int) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Worker{src: src, sender: sender, maxAttempts: maxAttempts, backoff: time.Second, poll: 5 * time.Second}
}

// Run 直到 ctx 取消
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		msg, err := w.src.Receive(ctx, w.poll)
		if errors.Is(err, ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("mail queue receive failed", zap.Error(err))
			if !sleep(ctx, w.backoff) {
				return nil
			}
			continue
		}
		w.deliver(ctx, msg)
	}
}

// deliver 返回是否发送成功
func (w *Worker) deliver(ctx context.Context, msg Message) bool {
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := w.sender.Send(ctx, msg)
		if err == nil {
			logger.Info("mail sent", zap.String("to", msg.To), zap.Int("attempt", attempt))
			return true
		}
		logger.Warn("mail send failed", zap.String("to", msg.To), zap.Int("attempt", attempt), zap.Error(err))
		if attempt < w.maxAttempts && !sleep(ctx, w.backoff*time.Duration(attempt)) {
			break
		}
	}
	logger.Error("mail dropped", zap.String("to", msg.To), zap.Int("attempts", w.maxAttempts))
	return false
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
