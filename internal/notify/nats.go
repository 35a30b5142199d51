package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// NatsPublisher 把通知发布到 JetStream，由外部消费者发信
type NatsPublisher struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNatsPublisher 连接并确保 stream 存在（幂等）
func NewNatsPublisher(url, stream, subject string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("social-feed"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     stream,
		Subjects: []string{subject},
		Storage:  jetstream.FileStorage,
		Replicas: 1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create stream %s: %w", stream, err)
	}
	return &NatsPublisher{nc: nc, js: js, subject: subject}, nil
}

func (p *NatsPublisher) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	m := nats.NewMsg(p.subject)
	m.Data = data
	// trace 上下文写进消息头，消费者可以接上链路
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(m.Header))
	if _, err := p.js.PublishMsg(ctx, m); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

func (p *NatsPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
