package commands

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/notify"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

var mailerCmd = &cobra.Command{
	Use:   "mailer",
	Short: "Deliver queued activation emails over SMTP",
	Long: `mailer consumes the Redis list written by "serve" when notify.backend
is "redis" and sends each message over SMTP with bounded retries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		cfg := a.cfg
		if cfg.SMTP.Host == "" {
			return errors.New("smtp.host is required")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue := notify.NewRedisQueue(a.redisClient(), cfg.Notify.Queue)
		sender := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		logger.Info("mailer started", zap.String("queue", cfg.Notify.Queue), zap.String("smtp", cfg.SMTP.Host))
		return notify.NewWorker(queue, sender, cfg.SMTP.MaxAttempts).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mailerCmd)
}
