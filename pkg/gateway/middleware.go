package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/raywall/fast-sam-local/pkg/metrics"
	"github.com/rs/zerolog"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
)

type ctxKeyCorrelation struct{}

// CorrelationID devolve o id de correlação da requisição, se houver.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyCorrelation{}).(string)
	return id
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	duration := time.Since(rw.startTime)
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", duration.Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// ObservabilityMiddleware propaga o correlation id, injeta o logger no contexto
// (log.Ctx) e registra latência e status de cada requisição.
func ObservabilityMiddleware(logger zerolog.Logger, recorder *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			corrID := r.Header.Get(HeaderCorrelationID)
			if corrID == "" {
				corrID = uuid.NewString()
			}
			w.Header().Set(HeaderCorrelationID, corrID)

			reqLogger := logger.With().Str("correlation_id", corrID).Logger()
			ctx := reqLogger.WithContext(r.Context())
			ctx = context.WithValue(ctx, ctxKeyCorrelation{}, corrID)

			wrapper := &responseWriterWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				startTime:      start,
			}

			next.ServeHTTP(wrapper, r.WithContext(ctx))

			latency := time.Since(start).Milliseconds()
			tags := map[string]string{"method": r.Method, "status": fmt.Sprintf("%d", wrapper.statusCode)}
			_ = recorder.Record(metrics.HTTPRequests, 1, tags)
			_ = recorder.Record(metrics.HTTPRequestTiming, float64(latency), tags)

			reqLogger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Int64("latency_ms", latency).
				Msg("request completed")
		})
	}
}

// CORSMiddleware libera qualquer origem e responde 200 a todo OPTIONS.
// Precisa envolver o router inteiro: preflight não casa com nenhuma rota.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
