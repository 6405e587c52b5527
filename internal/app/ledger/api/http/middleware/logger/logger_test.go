package logger

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

type pingOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func TestLogger_Middleware(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		fail      bool
		wantLevel string
	}{
		{name: "generates request id", wantLevel: "INFO"},
		{name: "keeps incoming request id", requestID: "req-42", wantLevel: "INFO"},
		{name: "conflict logged as warning", fail: true, wantLevel: "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			_, api := humatest.New(t)
			huma.Register(api, huma.Operation{
				OperationID: "ping",
				Method:      http.MethodGet,
				Path:        "/ping",
				Middlewares: huma.Middlewares{New(log).Middleware()},
			}, func(_ context.Context, _ *struct{}) (*pingOutput, error) {
				if tt.fail {
					return nil, huma.Error409Conflict("execution reverted: Not authorized")
				}
				out := &pingOutput{}
				out.Body.OK = true
				return out, nil
			})

			var args []any
			if tt.requestID != "" {
				args = append(args, HeaderRequestID+": "+tt.requestID)
			}
			resp := api.Get("/ping", args...)

			got := resp.Header().Get(HeaderRequestID)
			assert.NotEmpty(t, got)
			if tt.requestID != "" {
				assert.Equal(t, tt.requestID, got)
			}

			line := buf.String()
			assert.Contains(t, line, `"level":"`+tt.wantLevel+`"`)
			assert.Contains(t, line, `"sender":"anonymous"`)
			assert.Contains(t, line, `"path":"/ping"`)
		})
	}
}
