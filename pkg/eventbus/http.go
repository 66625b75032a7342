package eventbus

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	applog "github.com/raywall/fast-sam-local/pkg/logger"
	"github.com/rs/zerolog"
)

// EndpointPath é o endpoint HTTP de injeção de eventos.
const EndpointPath = "/__EVENT_BUS__"

// publishRequest é o corpo aceito pelo endpoint e pela ponte SQS.
type publishRequest struct {
	ID         string          `json:"id"`
	Version    string          `json:"version"`
	Source     string          `json:"source"`
	DetailType string          `json:"detailType"`
	Detail     json.RawMessage `json:"detail"`
}

// DecodeEntry converte {source, detailType, detail} em uma Entry. Um corpo
// que seja um literal string JSON é desempacotado antes.
func DecodeEntry(raw []byte) (Entry, error) {
	var serialized string
	if err := json.Unmarshal(raw, &serialized); err == nil {
		raw = []byte(serialized)
	}

	var req publishRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return Entry{}, fmt.Errorf("evento malformado: %w", err)
	}

	entry := Entry{ID: req.ID, Version: req.Version, Source: req.Source, DetailType: req.DetailType}
	if len(req.Detail) > 0 && string(req.Detail) != "null" {
		entry.Detail = string(req.Detail)
	}
	return entry, nil
}

// Mount registra POST /__EVENT_BUS__.
func Mount(router *mux.Router, broker Broker, logger zerolog.Logger) {
	logger = applog.Component(logger, "EventBridge")
	router.Handle(EndpointPath, Handler(broker, logger)).Methods(http.MethodPost)
	logger.Info().Str("path", EndpointPath).Msg("Endpoint do barramento registrado")
}

// Handler publica o evento recebido e devolve o reconhecimento do PutEvents.
func Handler(broker Broker, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			sendJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}

		entry, err := DecodeEntry(raw)
		if err != nil {
			sendJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}

		logger.Info().Str("source", entry.Source).Str("detail_type", entry.DetailType).Msg("Evento recebido")

		out, err := broker.Publish(r.Context(), []Entry{entry})
		if err != nil {
			logger.Error().Err(err).Msg("Falha ao publicar evento")
			sendJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
			return
		}
		sendJSON(w, http.StatusOK, out)
	}
}

func sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
