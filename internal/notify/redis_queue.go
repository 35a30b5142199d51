package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty 在超时时间内队列没有消息
var ErrEmpty = errors.New("queue empty")

// RedisQueue 用 Redis list 做任务队列：LPUSH 入队，BRPOP 出队
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

// Send 入队即返回，真正发信由 mailer 进程完成
func (q *RedisQueue) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", q.key, err)
	}
	return nil
}

// Receive 阻塞最多 timeout 取一条
func (q *RedisQueue) Receive(ctx context.Context, timeout time.Duration) (Message, error) {
	var msg Message
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return msg, ErrEmpty
	}
	if err != nil {
		return msg, err
	}
	// res = [key, value]
	if len(res) != 2 {
		return msg, fmt.Errorf("unexpected BRPOP reply %v", res)
	}
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return msg, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}

// Len 当前积压
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
