package logger

import (
	"fmt"
	"strings"

	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Info(msg string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
	Error(format string, args ...any)
	Errorf(format string, args ...any)
}

type ZapLogger struct {
	l *zap.SugaredLogger
}

func New(cfg config.Logger) (ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return ZapLogger{}, fmt.Errorf("parse level error: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if len(cfg.Output) != 0 {
		zcfg.OutputPaths = cfg.Output
	}

	if len(cfg.ErrOutput) != 0 {
		zcfg.ErrorOutputPaths = cfg.ErrOutput
	}

	l, err := zcfg.Build()
	if err != nil {
		return ZapLogger{}, fmt.Errorf("build logger error: %w", err)
	}

	return ZapLogger{l: l.Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() ZapLogger {
	return ZapLogger{l: zap.NewNop().Sugar()}
}

func (zl ZapLogger) Info(msg string, args ...any) {
	zl.l.Infow(msg, args...)
}

func (zl ZapLogger) Infof(format string, args ...any) {
	zl.l.Infof(format, args...)
}

func (zl ZapLogger) Warnf(format string, args ...any) {
	zl.l.Warnf(format, args...)
}

func (zl ZapLogger) Debugf(format string, args ...any) {
	zl.l.Debugf(format, args...)
}

// Error keeps the printf form the services were written against.
func (zl ZapLogger) Error(format string, args ...any) {
	zl.l.Errorf(format, args...)
}

func (zl ZapLogger) Errorf(format string, args ...any) {
	zl.l.Errorf(format, args...)
}

func (zl ZapLogger) Sync() error {
	return zl.l.Sync() //nolint:wrapcheck
}
