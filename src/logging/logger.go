package logging

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levelNames = map[string]zapcore.Level{
	"debug":   zapcore.DebugLevel,
	"info":    zapcore.InfoLevel,
	"warn":    zapcore.WarnLevel,
	"warning": zapcore.WarnLevel,
	"error":   zapcore.ErrorLevel,
}

var (
	level      = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	baseLogger atomic.Pointer[zap.Logger]
)

func init() {
	baseLogger.Store(zap.NewNop())
}

// ParseLevel maps a level name to a zap level. Unknown names yield false.
func ParseLevel(s string) (zapcore.Level, bool) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	return l, ok
}

// SetLogLevel parses and sets the global log level. Unknown names are ignored.
func SetLogLevel(s string) {
	l, ok := ParseLevel(s)
	if !ok {
		return
	}
	level.SetLevel(l)
}

// GetLogLevel returns the current global log level.
func GetLogLevel() zapcore.Level { return level.Level() }

// New builds a production zap logger writing to stdout and, when logFile is set, to that file too.
// The returned logger follows the global level, so SetLogLevel keeps working after construction.
func New(levelName, logFile string) (*zap.Logger, error) {
	if levelName != "" {
		SetLogLevel(levelName)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	if logFile != "" {
		cfg.OutputPaths = []string{logFile, "stdout"}
		cfg.ErrorOutputPaths = []string{logFile, "stderr"}
	} else {
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}
	logger, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(2))
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}
	return logger, nil
}

// SetLogger installs l as the package logger and returns the previous one.
func SetLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return baseLogger.Swap(l)
}

// Logger returns the package logger.
func Logger() *zap.Logger { return baseLogger.Load() }

// Sync flushes the package logger.
func Sync() { _ = baseLogger.Load().Sync() }

func logf(l zapcore.Level, format string, args ...interface{}) {
	if !level.Enabled(l) {
		return
	}
	// A message without args is logged as is so literal % characters survive.
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if ce := baseLogger.Load().Check(l, msg); ce != nil {
		ce.Write()
	}
}

// Public helpers
func Debugf(format string, a ...interface{}) { logf(zapcore.DebugLevel, format, a...) }
func Infof(format string, a ...interface{})  { logf(zapcore.InfoLevel, format, a...) }
func Warnf(format string, a ...interface{})  { logf(zapcore.WarnLevel, format, a...) }
func Errorf(format string, a ...interface{}) { logf(zapcore.ErrorLevel, format, a...) }

// Timing helper for phases.
func TimeTrack(start time.Time, label string) {
	dur := time.Since(start)
	Debugf("%s took %s", label, dur)
}
