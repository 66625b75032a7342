package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda/messages"
	"github.com/raywall/fast-sam-local/pkg/invoke"
)

// errorBody é o corpo fixo das falhas de invocação no caminho HTTP.
type errorBody struct {
	Error messages.InvokeResponse_Error `json:"error"`
}

// errorPayload extrai o erro no formato do runtime Lambda.
func errorPayload(err error) messages.InvokeResponse_Error {
	var invokeErr *invoke.Error
	if errors.As(err, &invokeErr) {
		return invokeErr.Payload()
	}
	return messages.InvokeResponse_Error{Message: err.Error(), Type: "Runtime.Unknown"}
}

// WriteError responde 500 com {"error": {"errorMessage", "errorType"}}.
func WriteError(w http.ResponseWriter, err error) {
	sendJSON(w, http.StatusInternalServerError, errorBody{Error: errorPayload(err)})
}

func sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
