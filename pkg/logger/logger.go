package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 日志配置
type Config struct {
	Level        string
	Development  bool
	File         string        // 为空时只写 stdout
	MaxAge       time.Duration // 滚动文件保留时长
	RotationTime time.Duration
}

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

func levelFromString(l string) zapcore.Level {
	switch l {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New 构建 *zap.Logger，不修改全局 logger
func New(cfg Config) (*zap.Logger, error) {
	lvl := levelFromString(cfg.Level)

	var encoder zapcore.Encoder
	if cfg.Development {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if cfg.File != "" {
		w, err := rotatingWriter(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, zapcore.AddSync(w))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), lvl)
	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...), nil
}

func rotatingWriter(cfg Config) (*rotatelogs.RotateLogs, error) {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	rotation := cfg.RotationTime
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return rotatelogs.New(
		cfg.File+".%Y%m%d",
		rotatelogs.WithLinkName(cfg.File),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(rotation),
	)
}

// Init 初始化全局 logger
func Init(cfg Config) error {
	lg, err := New(cfg)
	if err != nil {
		return err
	}
	Set(lg)
	return nil
}

// Set 替换全局 logger（测试里用 zaptest/observer 注入）
func Set(lg *zap.Logger) {
	mu.Lock()
	global = lg
	mu.Unlock()
}

// L 返回全局 logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Debug(msg string, fields ...zap.Field) { L().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...) }

// Sync 刷新缓冲
func Sync() error { return L().Sync() }
