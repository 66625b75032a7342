package invoke

import (
	"context"
	"net/http"
	"sync/atomic"
)

type responseKey struct{}

type responseChannel struct {
	w       http.ResponseWriter
	claimed atomic.Bool
}

// WithResponseWriter anexa o writer HTTP ao contexto da invocação, permitindo
// que o handler produza a resposta por conta própria.
func WithResponseWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, responseKey{}, &responseChannel{w: w})
}

// ClaimResponse entrega o writer ao handler e marca a resposta como assumida.
// Fora de uma invocação HTTP devolve false.
func ClaimResponse(ctx context.Context) (http.ResponseWriter, bool) {
	ch, ok := ctx.Value(responseKey{}).(*responseChannel)
	if !ok {
		return nil, false
	}
	ch.claimed.Store(true)
	return ch.w, true
}

// Claimed informa se o handler assumiu a resposta.
func Claimed(ctx context.Context) bool {
	ch, ok := ctx.Value(responseKey{}).(*responseChannel)
	return ok && ch.claimed.Load()
}
