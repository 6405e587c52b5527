package signature

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"maskedvaccine/internal/utils/reqsign"

	"golang.org/x/exp/slog"
)

const maxBodySize = 1 << 20

type contextKey string

const SenderKey contextKey = "sender"

// Signature проверяет подпись запроса и кладет адрес отправителя в контекст.
// Неподписанные запросы проходят дальше анонимно, решение принимает обработчик.
type Signature struct {
	window time.Duration
	now    func() time.Time
	log    *slog.Logger
}

func New(window time.Duration, now func() time.Time, log *slog.Logger) *Signature {
	if now == nil {
		now = time.Now
	}
	return &Signature{
		window: window,
		now:    now,
		log:    log.With("component", "signature_middleware"),
	}
}

// Handler - chi middleware. Тело читается целиком, поэтому работает на уровне
// net/http, а не huma.
func (s *Signature) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := reqsign.Headers{
			Signer:    r.Header.Get(reqsign.HeaderSigner),
			Timestamp: r.Header.Get(reqsign.HeaderTimestamp),
			Signature: r.Header.Get(reqsign.HeaderSignature),
		}
		if h.Signer == "" && h.Signature == "" {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			s.log.Error("read body", "error", err)
			unauthorized(w, "Unauthorized")
			return
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		sender, err := reqsign.Verify(h, r.Method, r.URL.Path, body, s.now(), s.window)
		if err != nil {
			s.log.Warn("rejected request signature", "path", r.URL.Path, "signer", h.Signer, "error", err)
			msg := "Unauthorized"
			if errors.Is(err, reqsign.ErrStale) {
				msg = "Unauthorized: stale request"
			}
			unauthorized(w, msg)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), SenderKey, sender)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// GetSender возвращает проверенный адрес отправителя
func GetSender(ctx context.Context) (string, bool) {
	sender, ok := ctx.Value(SenderKey).(string)
	return sender, ok && sender != ""
}
