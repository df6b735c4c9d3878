package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestOTelStatusMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode codes.Code
	}{
		{name: "ok stays unset", status: http.StatusOK, wantCode: codes.Unset},
		{name: "client error stays unset", status: http.StatusUnprocessableEntity, wantCode: codes.Unset},
		{name: "bad gateway is an error", status: http.StatusBadGateway, wantCode: codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := tracetest.NewSpanRecorder()
			provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/rebang/items", nil)
			ctx, span := provider.Tracer("test").Start(req.Context(), "request")
			rec := httptest.NewRecorder()
			c := e.NewContext(req.WithContext(ctx), rec)

			handler := func(c echo.Context) error {
				return c.NoContent(tt.status)
			}
			require.NoError(t, OTelStatusMiddleware()(handler)(c))
			span.End()

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantCode, spans[0].Status().Code)

			var got int64
			for _, attr := range spans[0].Attributes() {
				if attr.Key == "http.response.status_code" {
					got = attr.Value.AsInt64()
				}
			}
			assert.Equal(t, int64(tt.status), got)
		})
	}
}
