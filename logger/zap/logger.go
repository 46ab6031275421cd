package zap

import (
	"github.com/forbearing/tstore/logger"
	"go.uber.org/zap"
)

// Logger implements logger.Logger.
type Logger struct {
	zlog *zap.Logger
}

var _ logger.Logger = (*Logger)(nil)

func (l *Logger) Debug(args ...any) { l.zlog.Sugar().Debug(args...) }
func (l *Logger) Info(args ...any)  { l.zlog.Sugar().Info(args...) }
func (l *Logger) Warn(args ...any)  { l.zlog.Sugar().Warn(args...) }
func (l *Logger) Error(args ...any) { l.zlog.Sugar().Error(args...) }

func (l *Logger) Debugw(msg string, kv ...any) { l.zlog.Sugar().Debugw(msg, kv...) }
func (l *Logger) Infow(msg string, kv ...any)  { l.zlog.Sugar().Infow(msg, kv...) }
func (l *Logger) Warnw(msg string, kv ...any)  { l.zlog.Sugar().Warnw(msg, kv...) }
func (l *Logger) Errorw(msg string, kv ...any) { l.zlog.Sugar().Errorw(msg, kv...) }

// With returns a derived logger carrying kv as structured fields on every
// subsequent call.
func (l *Logger) With(kv ...any) logger.Logger {
	if len(kv) == 0 {
		return l
	}
	return &Logger{zlog: l.zlog.Sugar().With(kv...).Desugar()}
}
