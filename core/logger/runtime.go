package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type contextKey string

const (
	ridKey      contextKey = "log_rid"
	updateIDKey contextKey = "log_update_id"
	userIDKey   contextKey = "log_user_id"
	chatIDKey   contextKey = "log_chat_id"
	handlerKey  contextKey = "log_handler"
	loggerKey   contextKey = "log_logger"
)

// WithRID stores the request id in the context for downstream log records.
func WithRID(ctx context.Context, rid string) context.Context {
	if rid == "" {
		return ctx
	}
	return context.WithValue(ctx, ridKey, rid)
}

// RIDFrom returns the request id stored in the context, if any.
func RIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ridKey).(string); ok {
		return v
	}
	return ""
}

// WithUpdateMeta stores update, chat and user identifiers in the context.
func WithUpdateMeta(ctx context.Context, updateID int, chatID, userID int64) context.Context {
	if updateID != 0 {
		ctx = context.WithValue(ctx, updateIDKey, int64(updateID))
	}
	if chatID != 0 {
		ctx = context.WithValue(ctx, chatIDKey, chatID)
	}
	if userID != 0 {
		ctx = context.WithValue(ctx, userIDKey, userID)
	}
	return ctx
}

// UpdateIDFrom returns the update id stored in the context, or zero.
func UpdateIDFrom(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(updateIDKey).(int64); ok {
		return v
	}
	return 0
}

// UserIDFrom returns the user id stored in the context, or zero.
func UserIDFrom(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(userIDKey).(int64); ok {
		return v
	}
	return 0
}

// ChatIDFrom returns the chat id stored in the context, or zero.
func ChatIDFrom(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(chatIDKey).(int64); ok {
		return v
	}
	return 0
}

// WithHandler stores the logical handler name in the context.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, handlerKey, handler)
}

// HandlerFrom returns the handler name stored in the context, if any.
func HandlerFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(handlerKey).(string); ok {
		return v
	}
	return ""
}

// WithLogger stores a scoped logger in the context.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in the context or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// BuildRID returns a request identifier: <unix>-<update>-<rand4hex>.
func BuildRID(updateID int) string {
	var raw [2]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return fmt.Sprintf("%d-%d", time.Now().Unix(), updateID)
	}
	return fmt.Sprintf("%d-%d-%s", time.Now().Unix(), updateID, hex.EncodeToString(raw[:]))
}

// CompactRID shrinks a full rid to "<updateID>-<suffix>" for log lines.
func CompactRID(rid string) string {
	parts := strings.Split(rid, "-")
	if len(parts) < 3 {
		return rid
	}
	return parts[1] + "-" + parts[len(parts)-1]
}

const sanitizeDefaultLimit = 64

// Sanitize trims and truncates free-form user input before logging.
func Sanitize(s string) string {
	return SanitizeLimit(s, sanitizeDefaultLimit)
}

// SanitizeLimit trims control characters and truncates to limit runes.
func SanitizeLimit(s string, limit int) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return ' '
		}
		return r
	}, s)
	runes := []rune(s)
	if limit > 0 && len(runes) > limit {
		return string(runes[:limit]) + "…"
	}
	return s
}
