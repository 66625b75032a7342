package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	applog "github.com/raywall/fast-sam-local/pkg/logger"
	"github.com/raywall/fast-sam-local/pkg/metrics"
	"github.com/raywall/fast-sam-local/pkg/routing"
	"github.com/rs/zerolog"
)

// Bus é o barramento em processo. Cada assinatura que casa com um evento é
// invocada em sua própria goroutine; o publicador nunca espera os assinantes.
// A entrega é at-least-once, sem deduplicação.
type Bus struct {
	mu     sync.RWMutex
	subs   routing.Subscriptions
	closed bool

	inv      Invoker
	logger   zerolog.Logger
	recorder *metrics.Recorder
	now      func() time.Time

	inflight sync.WaitGroup
}

type Option func(*Bus)

func WithLogger(logger zerolog.Logger) Option {
	return func(b *Bus) { b.logger = applog.Component(logger, "EventBridge") }
}

func WithMetrics(recorder *metrics.Recorder) Option {
	return func(b *Bus) { b.recorder = recorder }
}

// WithClock troca a fonte de tempo usada quando a entrada não informa Time.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) { b.now = now }
}

func New(inv Invoker, subs routing.Subscriptions, opts ...Option) *Bus {
	b := &Bus{
		subs:   append(routing.Subscriptions(nil), subs...),
		inv:    inv,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe acrescenta uma assinatura ao fim da tabela.
func (b *Bus) Subscribe(sub routing.Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, sub)
}

// Subscriptions devolve uma cópia da tabela atual.
func (b *Bus) Subscriptions() routing.Subscriptions {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append(routing.Subscriptions(nil), b.subs...)
}

// Publish converte cada entrada em um evento EventBridge e dispara as
// assinaturas correspondentes, na ordem da tabela. Uma entrada com Detail
// inválido falha sozinha; as demais seguem.
func (b *Bus) Publish(ctx context.Context, entries []Entry) (PutEventsOutput, error) {
	if len(entries) == 0 {
		return PutEventsOutput{}, ErrEmptyBatch
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return PutEventsOutput{}, ErrClosed
	}

	// Entregas não herdam o cancelamento da requisição que publicou
	deliveryCtx := context.WithoutCancel(ctx)
	out := PutEventsOutput{Entries: make([]ResultEntry, 0, len(entries))}

	for _, entry := range entries {
		event, err := b.buildEvent(entry)
		if err != nil {
			b.logger.Warn().Err(err).Str("source", entry.Source).Str("detail_type", entry.DetailType).Msg("Entrada rejeitada")
			out.FailedEntryCount++
			out.Entries = append(out.Entries, ResultEntry{
				ErrorCode:    errorCode(err),
				ErrorMessage: err.Error(),
			})
			continue
		}

		out.Entries = append(out.Entries, ResultEntry{EventID: event.ID})
		b.record(metrics.EventsPublished, 1, map[string]string{"source": event.Source})

		matched := b.subs.Matching(event.Source, event.DetailType)
		if len(matched) == 0 {
			b.logger.Debug().Str("source", event.Source).Str("detail_type", event.DetailType).Msg("Nenhuma assinatura para o evento")
			continue
		}

		payload, err := json.Marshal(event)
		if err != nil {
			return out, fmt.Errorf("falha ao serializar evento: %w", err)
		}

		for _, sub := range matched {
			b.dispatch(deliveryCtx, sub, event.ID, payload)
		}
	}

	return out, nil
}

// buildEvent monta o envelope EventBridge de uma entrada.
func (b *Bus) buildEvent(entry Entry) (events.CloudWatchEvent, error) {
	if entry.Source == "" || entry.DetailType == "" {
		return events.CloudWatchEvent{}, fmt.Errorf("%w: Source e DetailType são obrigatórios", errInvalidArgument)
	}

	detail := json.RawMessage(entry.Detail)
	if entry.Detail == "" {
		detail = json.RawMessage("{}")
	}
	if !json.Valid(detail) {
		return events.CloudWatchEvent{}, ErrMalformedDetail
	}

	ts := b.now().UTC()
	if entry.Time != nil {
		ts = entry.Time.UTC()
	}

	resources := entry.Resources
	if resources == nil {
		resources = []string{}
	}

	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	version := entry.Version
	if version == "" {
		version = EventVersion
	}

	return events.CloudWatchEvent{
		Version:    version,
		ID:         id,
		DetailType: entry.DetailType,
		Source:     entry.Source,
		AccountID:  AccountID,
		Time:       ts,
		Region:     Region,
		Resources:  resources,
		Detail:     detail,
	}, nil
}

func (b *Bus) dispatch(ctx context.Context, sub routing.Subscription, eventID string, payload []byte) {
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()

		log := b.logger.With().
			Str("function", sub.Function).
			Str("trigger", sub.Trigger).
			Str("event_id", eventID).
			Logger()
		tags := map[string]string{"function": sub.Function}

		defer func() {
			if r := recover(); r != nil {
				b.record(metrics.EventsFailed, 1, tags)
				log.Error().Interface("panic", r).Msg("Assinante entrou em pânico")
			}
		}()

		log.Info().Str("target", sub.Target.String()).Msg("Chamando função")
		result, err := b.inv.Invoke(ctx, sub.Target, payload)
		if err != nil {
			b.record(metrics.EventsFailed, 1, tags)
			log.Error().Err(err).Msg("Erro ao chamar função")
			return
		}

		b.record(metrics.EventsDelivered, 1, tags)
		log.Debug().RawJSON("result", rawOrNull(result)).Msg("Função retornou")
	}()
}

// Shutdown recusa novas publicações e espera as entregas em andamento, ou o
// fim do ctx.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) record(id string, value float64, tags map[string]string) {
	if err := b.recorder.Record(id, value, tags); err != nil {
		b.logger.Warn().Err(err).Str("metric", id).Msg("Falha ao registrar métrica")
	}
}

func rawOrNull(raw []byte) []byte {
	if len(raw) == 0 || !json.Valid(raw) {
		return []byte("null")
	}
	return raw
}
