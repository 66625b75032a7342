package eventbus

import (
	"context"
	"errors"
	"time"

	"github.com/raywall/fast-sam-local/pkg/invoke"
	"github.com/raywall/fast-sam-local/pkg/routing"
)

// Valores fixos do envelope EventBridge emulado.
const (
	EventVersion = "0"
	AccountID    = "123456789012"
	Region       = "us-east-1"
)

// Códigos de erro por entrada, no formato do PutEvents.
const (
	ErrorCodeMalformedDetail = "MalformedDetail"
	ErrorCodeInvalidArgument = "InvalidArgument"
)

var (
	// ErrMalformedDetail indica um Detail que não é JSON válido.
	ErrMalformedDetail = errors.New("eventbus: detail não é JSON válido")
	// ErrClosed indica publicação após Shutdown.
	ErrClosed = errors.New("eventbus: barramento encerrado")
	// ErrEmptyBatch indica um lote sem entradas.
	ErrEmptyBatch = errors.New("eventbus: lote vazio")

	errInvalidArgument = errors.New("eventbus: argumento inválido")
)

func errorCode(err error) string {
	if errors.Is(err, ErrMalformedDetail) {
		return ErrorCodeMalformedDetail
	}
	return ErrorCodeInvalidArgument
}

// Entry é uma entrada do lote publicado (PutEventsRequestEntry). ID e Version
// são opcionais: ausentes, o envelope recebe um uuid e a versão "0".
type Entry struct {
	ID           string     `json:"Id,omitempty"`
	Version      string     `json:"Version,omitempty"`
	Source       string     `json:"Source"`
	DetailType   string     `json:"DetailType"`
	Detail       string     `json:"Detail"`
	EventBusName string     `json:"EventBusName,omitempty"`
	Resources    []string   `json:"Resources,omitempty"`
	Time         *time.Time `json:"Time,omitempty"`
}

// ResultEntry é o resultado de uma entrada: EventId em sucesso, ErrorCode em falha.
type ResultEntry struct {
	EventID      string `json:"EventId,omitempty"`
	ErrorCode    string `json:"ErrorCode,omitempty"`
	ErrorMessage string `json:"ErrorMessage,omitempty"`
}

// PutEventsOutput é o reconhecimento devolvido ao publicador. Não reflete o
// resultado dos assinantes.
type PutEventsOutput struct {
	FailedEntryCount int           `json:"FailedEntryCount"`
	Entries          []ResultEntry `json:"Entries"`
}

// Broker é o contrato do barramento.
type Broker interface {
	Publish(ctx context.Context, entries []Entry) (PutEventsOutput, error)
	Subscribe(sub routing.Subscription)
}

// Invoker executa o Target de uma assinatura.
type Invoker interface {
	Invoke(ctx context.Context, t invoke.Target, payload []byte) ([]byte, error)
}
