package logger

import (
	"net/http"
	"time"

	"maskedvaccine/internal/app/ledger/api/http/middleware/signature"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const HeaderRequestID = "X-Request-ID"

// Logger пишет в лог каждый вызов API узла вместе с адресом подписанта
type Logger struct {
	log *slog.Logger
	now func() time.Time
}

func New(log *slog.Logger) *Logger {
	return &Logger{
		log: log.With(slog.String("component", "http_logger")),
		now: time.Now,
	}
}

// Middleware присваивает запросу X-Request-ID и логирует результат.
// Отказы контракта (409) и ошибки подписи пишутся на уровне Warn.
func (l *Logger) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := l.now()

		requestID := ctx.Header(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.SetHeader(HeaderRequestID, requestID)

		next(ctx)

		sender, ok := signature.GetSender(ctx.Context())
		if !ok {
			sender = "anonymous"
		}

		status := ctx.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		l.log.Log(ctx.Context(), level, "HTTP request",
			slog.String("request_id", requestID),
			slog.String("method", ctx.Method()),
			slog.String("path", ctx.URL().Path),
			slog.String("sender", sender),
			slog.Int("status", status),
			slog.Duration("duration", l.now().Sub(start)),
			slog.String("remote_addr", ctx.RemoteAddr()),
		)
	}
}
