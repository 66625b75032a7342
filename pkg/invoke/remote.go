package invoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda/messages"
)

// Caminho de invocação exposto pelo Lambda Runtime Interface Emulator.
const rieInvocationPath = "/2015-03-31/functions/function/invocations"

// HandlerHeader leva o handler pedido ("<modulo>.<entrada>") para o runtime remoto.
const HandlerHeader = "X-Sam-Local-Handler"

// RemoteLoader é um Loader que encaminha cada invocação para um runtime remoto
// (Runtime Interface Emulator) via HTTP, em vez de executar o handler no processo.
type RemoteLoader struct {
	Endpoint string
	Timeout  time.Duration
	client   *http.Client
}

func NewRemoteLoader(endpoint string, timeout time.Duration) *RemoteLoader {
	return &RemoteLoader{
		Endpoint: strings.TrimSuffix(endpoint, "/"),
		Timeout:  timeout,
		client:   &http.Client{},
	}
}

// Load aceita qualquer caminho: a existência do módulo só é conhecida pelo runtime remoto.
func (l *RemoteLoader) Load(_ context.Context, modulePath string) (Module, error) {
	return remoteHandler{loader: l, handler: modulePath}, nil
}

// remoteHandler é ao mesmo tempo Module (para percorrer a entrada pontuada)
// e lambda.Handler (para encaminhar a invocação).
type remoteHandler struct {
	loader  *RemoteLoader
	handler string
	entry   []string
}

func (h remoteHandler) Lookup(name string) (any, bool) {
	entry := append(append([]string(nil), h.entry...), name)
	return remoteHandler{loader: h.loader, handler: h.handler, entry: entry}, true
}

func (h remoteHandler) name() string {
	if len(h.entry) == 0 {
		return h.handler
	}
	return h.handler + "." + strings.Join(h.entry, ".")
}

func (h remoteHandler) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	return h.loader.forward(ctx, h.name(), payload)
}

func (l *RemoteLoader) forward(ctx context.Context, handler string, payload []byte) ([]byte, error) {
	// 1. Timeout específico
	reqCtx := ctx
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	// 2. Prepara Request
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, l.Endpoint+rieInvocationPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar request de invocação: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "FastSamLocal/Invoker")
	req.Header.Set(HandlerHeader, handler)

	// 3. Executa
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("falha na conexão com runtime (%s): %w", l.Endpoint, err)
	}
	defer resp.Body.Close()

	// 4. Lê Resposta
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta do runtime: %w", err)
	}

	// 5. Erro da função (o RIE sinaliza via header, com status 200)
	if resp.Header.Get("X-Amz-Function-Error") != "" || resp.StatusCode >= http.StatusBadRequest {
		var payloadErr messages.InvokeResponse_Error
		if jsonErr := json.Unmarshal(body, &payloadErr); jsonErr != nil || payloadErr.Message == "" {
			payloadErr = messages.InvokeResponse_Error{
				Type:    "Runtime.RemoteError",
				Message: fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			}
		}
		return nil, &Error{Type: payloadErr.Type, Message: payloadErr.Message}
	}

	return body, nil
}
