package metrics

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por Prometheus ou Logging sem alterar a lógica do emulador.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// MetricType define os tipos suportados.
type MetricType string

const (
	TypeCount     MetricType = "count"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

// MetricDefinition armazena os metadados da métrica (nome real, tipo).
type MetricDefinition struct {
	Name string
	Type MetricType
}

// IDs das métricas emitidas pelo emulador.
const (
	InvokeCount       = "invoke_count"
	InvokeErrors      = "invoke_errors"
	InvokeDuration    = "invoke_duration"
	EventsPublished   = "events_published"
	EventsDelivered   = "events_delivered"
	EventsFailed      = "events_failed"
	HTTPRequests      = "http_requests"
	HTTPRequestTiming = "http_request_timing"
)

// Definitions é o catálogo padrão de métricas do emulador.
var Definitions = map[string]MetricDefinition{
	InvokeCount:       {Name: "invoke.count", Type: TypeCount},
	InvokeErrors:      {Name: "invoke.errors", Type: TypeCount},
	InvokeDuration:    {Name: "invoke.duration_ms", Type: TypeHistogram},
	EventsPublished:   {Name: "eventbus.published", Type: TypeCount},
	EventsDelivered:   {Name: "eventbus.delivered", Type: TypeCount},
	EventsFailed:      {Name: "eventbus.failed", Type: TypeCount},
	HTTPRequests:      {Name: "http.requests", Type: TypeCount},
	HTTPRequestTiming: {Name: "http.request.duration_ms", Type: TypeHistogram},
}
