package logger

import (
	"context"

	"go.uber.org/zap"
)

type traceKey struct{}

// WithTraceID 把 trace id 写入 ctx，业务层日志通过 Ctx 带出
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// TraceID 取不到时返回空串
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// Ctx 返回带 trace_id 字段的 logger
func Ctx(ctx context.Context) *zap.Logger {
	if id := TraceID(ctx); id != "" {
		return Log.With(zap.String("trace_id", id))
	}
	return Log
}
