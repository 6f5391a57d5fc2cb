package zlog

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// Init sets up the global logger. With an empty logPath output goes to stdout only.
func Init(logPath string) {
	once.Do(func() {
		logger = build(logPath)
	})
}

func build(logPath string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stdout),
			zapcore.DebugLevel,
		),
	}

	if logPath != "" {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(logPath, "crediagenda.log"),
			MaxSize:    100, // MB
			MaxBackups: 7,
			MaxAge:     30, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(rotator),
			zapcore.InfoLevel,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
}

func l() *zap.Logger {
	if logger == nil {
		Init("")
	}
	return logger
}

func Debug(msg string, fields ...zap.Field) { l().Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { l().Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { l().Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { l().Error(msg, fields...) }

func Fatal(msg string, fields ...zap.Field) { l().Fatal(msg, fields...) }

// Sync flushes buffered entries before process exit.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
