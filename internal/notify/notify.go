// Package notify 激活码等邮件通知的投递端
//
// 调用方只依赖 Notifier：提交事务后投递，失败只记日志。
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/pkg/logger"
)

const ActivationSubject = "Your activation code"

// Payload 邮件模板参数
type Payload struct {
	Code  string `json:"code"`
	Email string `json:"email"`
}

// Message 一封待发邮件
type Message struct {
	To      string  `json:"to"`
	Subject string  `json:"subject"`
	Payload Payload `json:"payload"`
}

func Activation(email, code string) Message {
	return Message{To: email, Subject: ActivationSubject, Payload: Payload{Code: code, Email: email}}
}

// Body 纯文本正文
func (m Message) Body() string {
	return fmt.Sprintf("Hello %s,\r\n\r\nyour activation code is %s.\r\n", m.Payload.Email, m.Payload.Code)
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier 只打日志，开发环境默认
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, msg Message) error {
	logger.Info("notification", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.String("code", msg.Payload.Code))
	return nil
}
