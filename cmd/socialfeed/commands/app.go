package commands

import (
	"context"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/auth"
	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/notify"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/database"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// app 进程级资源，由 main 持有并在退出时释放
type app struct {
	cfg   *config.Config
	db    *gorm.DB
	store *repository.Store
	redis *redis.Client

	closers []func()
}

func loadConfig() (*config.Config, error) {
	if configDir != "" {
		return config.Load(configDir)
	}
	return config.Load()
}

func newApp(migrate bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Config{
		Level:        cfg.Log.Level,
		Development:  cfg.Log.Development,
		File:         cfg.Log.File,
		MaxAge:       cfg.Log.MaxAge,
		RotationTime: cfg.Log.RotationTime,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if !migrate {
		cfg.Database.AutoMigrate = false
	}
	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, db: db, store: repository.NewStore(db)}
	a.closers = append(a.closers, func() { database.Close(db) })
	return a, nil
}

func (a *app) redisClient() *redis.Client {
	if a.redis == nil {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		client := a.redis
		a.closers = append(a.closers, func() { _ = client.Close() })
	}
	return a.redis
}

// notifier 按配置选择投递端
func (a *app) notifier() (notify.Notifier, error) {
	switch a.cfg.Notify.Backend {
	case "redis":
		return notify.NewRedisQueue(a.redisClient(), a.cfg.Notify.Queue), nil
	case "nats":
		p, err := notify.NewNatsPublisher(a.cfg.Notify.NatsURL, a.cfg.Notify.NatsStream, a.cfg.Notify.Subject)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, p.Close)
		return p, nil
	default:
		return notify.LogNotifier{}, nil
	}
}

func (a *app) feedCache(ctx context.Context) service.FeedCache {
	if !a.cfg.Cache.Enabled {
		return nil
	}
	client := a.redisClient()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, feed cache disabled", zap.Error(err))
		return nil
	}
	return cache.NewFeedCache(client, a.cfg.Cache.FeedTTL)
}

// tokens 未配置密钥时关闭 bearer 认证，只接受 api-key
func (a *app) tokens() *auth.TokenManager {
	if a.cfg.Auth.JWTSecret == "" {
		logger.Warn("auth.jwt_secret not set, bearer tokens disabled")
		return nil
	}
	return auth.NewTokenManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.Issuer, a.cfg.Auth.TokenTTL)
}

func (a *app) accounts(mailer service.Enqueuer) service.AccountService {
	return service.NewAccountService(a.store, auth.BcryptHasher{Cost: a.cfg.Auth.BcryptCost}, a.tokens(), mailer)
}

func (a *app) initSentry() bool {
	if a.cfg.Sentry.DSN == "" {
		return false
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              a.cfg.Sentry.DSN,
		Environment:      a.cfg.Sentry.Environment,
		EnableTracing:    a.cfg.Sentry.TracesSampleRate > 0,
		TracesSampleRate: a.cfg.Sentry.TracesSampleRate,
	}); err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
		return false
	}
	return true
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = logger.Sync()
}
