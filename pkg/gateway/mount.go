package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gorilla/mux"
	"github.com/raywall/fast-sam-local/pkg/invoke"
	applog "github.com/raywall/fast-sam-local/pkg/logger"
	"github.com/raywall/fast-sam-local/pkg/routing"
	"github.com/rs/zerolog"
)

// wildcardVar é a variável do mux que captura o restante do path coringa.
const wildcardVar = "wildcard"

// Invoker é o contrato usado pelos montadores para executar um Target.
type Invoker interface {
	Invoke(ctx context.Context, t invoke.Target, payload []byte) ([]byte, error)
}

// MountOptions controla o registro das rotas.
type MountOptions struct {
	APIPrefix string
	Logger    zerolog.Logger
}

// Mount registra cada rota nos dois pontos de montagem (puro e prefixado).
func Mount(router *mux.Router, routes []routing.Route, inv Invoker, opts MountOptions) {
	logger := applog.Component(opts.Logger, "ApiGateway")

	for _, route := range routes {
		handler := routeHandler(route, inv, logger)
		for _, mountPath := range route.MountPaths(opts.APIPrefix) {
			r := router.Handle(MuxPath(mountPath), handler)
			if route.Method != routing.MethodAny {
				r.Methods(route.Method)
			}
			logger.Info().
				Str("function", route.Function).
				Str("method", route.Method).
				Str("path", mountPath).
				Msg("Endpoint registrado")
		}
	}
}

// MuxPath converte o padrão interno para a sintaxe do gorilla/mux:
// {pN} permanece e o coringa final vira {wildcard:.*}.
func MuxPath(pattern string) string {
	if strings.HasSuffix(pattern, routing.Wildcard) {
		return strings.TrimSuffix(pattern, routing.Wildcard) + "{" + wildcardVar + ":.*}"
	}
	return pattern
}

func routeHandler(route routing.Route, inv Invoker, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Info().Str("path", r.URL.Path).Str("function", route.Function).Msg("Requisição recebida")

		// 1. Parâmetros de path, renomeados de {pN} para os nomes do template
		vars := mux.Vars(r)
		params := make(map[string]string, len(route.ParameterNames)+1)
		for i, name := range route.ParameterNames {
			params[name] = vars[routing.Marker(i)]
		}
		if route.WildcardName != "" {
			params[route.WildcardName] = vars[wildcardVar]
		}

		// 2. Requisição -> evento
		event, err := ToEvent(r, route.Resource, params)
		if err != nil {
			WriteError(w, err)
			return
		}
		payload, err := json.Marshal(event)
		if err != nil {
			WriteError(w, err)
			return
		}

		// 3. Invocação
		ctx := invoke.WithResponseWriter(r.Context(), w)
		out, err := inv.Invoke(ctx, route.Target, payload)
		if invoke.Claimed(ctx) {
			return
		}
		if err != nil {
			logger.Error().Err(err).Str("function", route.Function).Msg("Erro não tratado")
			WriteError(w, err)
			return
		}

		// 4. Resultado -> resposta
		var resp events.APIGatewayProxyResponse
		if err := json.Unmarshal(out, &resp); err != nil {
			WriteError(w, &invoke.Error{
				Function: route.Function,
				Type:     "Runtime.InvalidResponse",
				Message:  fmt.Sprintf("resposta fora do formato do API Gateway: %v", err),
				Err:      err,
			})
			return
		}
		if err := WriteResponse(w, resp); err != nil {
			if errors.Is(err, ErrInvalidStatus) {
				logger.Error().Err(err).Str("function", route.Function).Msg("Resposta rejeitada")
				WriteError(w, &invoke.Error{
					Function: route.Function,
					Type:     "Runtime.InvalidStatusCode",
					Message:  err.Error(),
					Err:      err,
				})
				return
			}
			logger.Warn().Err(err).Str("function", route.Function).Msg("Falha ao escrever resposta")
		}
	}
}
