package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/raywall/fast-sam-local/pkg/invoke"
	applog "github.com/raywall/fast-sam-local/pkg/logger"
	"github.com/rs/zerolog"
)

// DirectPrefix é a raiz dos endpoints de invocação direta.
const DirectPrefix = "/__FN__"

// MountDirect registra POST /__FN__/{nome} para cada função, com ou sem gatilhos.
// O payload vai cru para o handler, sem o envelope do API Gateway.
func MountDirect(router *mux.Router, targets []invoke.Target, inv Invoker, logger zerolog.Logger) {
	logger = applog.Component(logger, "DirectInvoke")

	for _, target := range targets {
		path := DirectPrefix + "/" + target.Function
		router.Handle(path, directHandler(target, inv, logger)).Methods(http.MethodPost)
		logger.Info().Str("function", target.Function).Str("path", path).Msg("Endpoint direto registrado")
	}
}

func directHandler(target invoke.Target, inv Invoker, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			WriteError(w, err)
			return
		}

		payload, err := DirectPayload(raw)
		if err != nil {
			sendJSON(w, http.StatusInternalServerError, errorPayload(err))
			return
		}

		logger.Info().Str("function", target.Function).Str("target", target.String()).Msg("Invocação direta")

		out, err := inv.Invoke(r.Context(), target, payload)
		if err != nil {
			logger.Error().Err(err).Str("function", target.Function).Msg("Erro na invocação direta")
			sendJSON(w, http.StatusInternalServerError, errorPayload(err))
			return
		}

		if json.Valid(out) {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
	}
}

// DirectPayload normaliza o corpo da invocação direta: vazio vira {}, e um
// literal string JSON é desempacotado e tratado como o documento serializado.
func DirectPayload(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return []byte("{}"), nil
	}

	var serialized string
	if err := json.Unmarshal(raw, &serialized); err == nil {
		if !json.Valid([]byte(serialized)) {
			return nil, fmt.Errorf("payload serializado não é JSON válido")
		}
		return []byte(serialized), nil
	}
	return raw, nil
}
