package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	gate "github.com/goliatone/go-auth-gate"
)

type zapLogger struct {
	s *zap.SugaredLogger
}

var _ gate.Logger = zapLogger{}

func newLogger(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func (l zapLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l zapLogger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l zapLogger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
func (l zapLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }

func named(base *zap.Logger, name string) gate.Logger {
	return zapLogger{s: base.Named(name).Sugar()}
}
