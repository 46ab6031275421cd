// Package zap backs logger.Logger with go.uber.org/zap.
package zap

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/forbearing/tstore/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logDir        string
	logLevel      string
	logFormat     string
	logMaxAge     int
	logMaxSize    int
	logMaxBackups int
)

// Option configures encoder behavior for New.
type Option struct {
	DisableMsg   bool
	DisableLevel bool
}

// Init builds the per-subsystem loggers the rest of the module logs
// through (logger.Identifier, logger.Catalog, ...).
func Init(dir, level, format string, maxAgeDays, maxSizeMB, maxBackups int) error {
	logDir = dir
	logLevel = level
	logFormat = format
	logMaxAge = maxAgeDays
	logMaxSize = maxSizeMB
	logMaxBackups = maxBackups

	logger.Identifier = New("identifier.log")
	logger.Catalog = New("catalog.log")
	logger.Router = New("router.log")
	logger.Store = New("store.log")
	logger.Resolve = New("resolve.log")
	logger.Query = New("query.log")
	logger.DataSource = New("datasource.log")
	return nil
}

// Clean flushes every subsystem logger. Call once at shutdown.
func Clean() {
	for _, l := range []logger.Logger{
		logger.Identifier, logger.Catalog, logger.Router,
		logger.Store, logger.Resolve, logger.Query, logger.DataSource,
	} {
		if zl, ok := l.(*Logger); ok {
			_ = zl.zlog.Sync()
		}
	}
}

// New builds a logger.Logger backed by *zap.Logger.
// filename: target log file name ("/dev/stdout" for console output).
func New(filename string, opts ...Option) *Logger {
	zlog := zap.New(
		zapcore.NewCore(newLogEncoder(opts...), newLogWriter(filename), newLogLevel()),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.FatalLevel),
	)
	return &Logger{zlog: zlog}
}

func newLogWriter(filename string) zapcore.WriteSyncer {
	switch strings.TrimSpace(filename) {
	case "/dev/stdout", "":
		return zapcore.AddSync(os.Stdout)
	case "/dev/stderr":
		return zapcore.AddSync(os.Stderr)
	default:
		if len(logDir) == 0 {
			return zapcore.AddSync(os.Stdout)
		}
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(logDir, filename),
			MaxAge:     logMaxAge,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackups,
			LocalTime:  true,
		})
	}
}

func newLogLevel() zapcore.Level {
	if len(logLevel) == 0 {
		return zapcore.InfoLevel
	}
	lvl := new(zapcore.Level)
	if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
		return zapcore.InfoLevel
	}
	return *lvl
}

func newLogEncoder(opts ...Option) zapcore.Encoder {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	if len(opts) > 0 {
		o := opts[0]
		if o.DisableMsg {
			enc.MessageKey = ""
		}
		if o.DisableLevel {
			enc.LevelKey = ""
		}
	}
	switch strings.ToLower(logFormat) {
	case "console", "text":
		return zapcore.NewConsoleEncoder(enc)
	default:
		return zapcore.NewJSONEncoder(enc)
	}
}
