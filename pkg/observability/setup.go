package observability

import (
	"fmt"
	"io"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/raywall/fast-sam-local/pkg/config"
	"github.com/raywall/fast-sam-local/pkg/metrics"
	"github.com/rs/zerolog"
)

// LogProvider registra as métricas no log em nível debug. É o destino
// padrão quando o Datadog está desligado.
type LogProvider struct {
	logger zerolog.Logger
}

func (l *LogProvider) emit(kind, name string, value float64, tags []string) error {
	l.logger.Debug().
		Str("metric", name).
		Str("type", kind).
		Float64("value", value).
		Strs("tags", tags).
		Msg("métrica")
	return nil
}

func (l *LogProvider) Count(name string, value float64, tags []string) error {
	return l.emit("count", name, value, tags)
}

func (l *LogProvider) Gauge(name string, value float64, tags []string) error {
	return l.emit("gauge", name, value, tags)
}

func (l *LogProvider) Histogram(name string, value float64, tags []string) error {
	return l.emit("histogram", name, value, tags)
}

func (l *LogProvider) Close() error { return nil }

// DatadogProvider adapta a lib oficial do Datadog para nossa interface.
type DatadogProvider struct {
	client statsd.ClientInterface
}

func (d *DatadogProvider) Count(name string, value float64, tags []string) error {
	return d.client.Count(name, int64(value), tags, 1)
}

func (d *DatadogProvider) Gauge(name string, value float64, tags []string) error {
	return d.client.Gauge(name, value, tags, 1)
}

func (d *DatadogProvider) Histogram(name string, value float64, tags []string) error {
	return d.client.Histogram(name, value, tags, 1)
}

// Close descarrega o buffer do cliente StatsD.
func (d *DatadogProvider) Close() error {
	return d.client.Close()
}

// Provider agrega o contrato de métricas e o encerramento do cliente.
type Provider interface {
	metrics.Provider
	io.Closer
}

// SetupMetrics inicializa o provedor correto baseado na configuração do emulador.
func SetupMetrics(cfg config.MetricsConf, logger zerolog.Logger) (Provider, error) {
	if !cfg.Datadog.Enabled {
		return &LogProvider{logger: logger.With().Str("component", "metrics").Logger()}, nil
	}

	// Configurações do cliente StatsD
	opts := []statsd.Option{
		statsd.WithNamespace(cfg.Datadog.Namespace),
		statsd.WithTags([]string{"service:sam-local"}),
	}

	client, err := statsd.New(cfg.Datadog.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no datadog statsd: %w", err)
	}

	return &DatadogProvider{client: client}, nil
}
