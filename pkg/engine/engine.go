package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/raywall/fast-sam-local/pkg/config"
	"github.com/raywall/fast-sam-local/pkg/eventbus"
	"github.com/raywall/fast-sam-local/pkg/gateway"
	"github.com/raywall/fast-sam-local/pkg/invoke"
	"github.com/raywall/fast-sam-local/pkg/metrics"
	"github.com/raywall/fast-sam-local/pkg/routing"
	"github.com/raywall/fast-sam-local/pkg/template"
	"github.com/rs/zerolog"
)

// StatusPath responde se o emulador está de pé.
const StatusPath = "/api/status"

// SchemaPath expõe o resumo de rotas, layers e assinaturas.
const SchemaPath = "/schema"

// Engine liga o template classificado ao gateway HTTP e ao barramento de eventos.
// Tabelas e schema são montados uma vez em New e apenas lidos depois.
type Engine struct {
	Config   *config.EmulatorConfig
	Template *template.Template
	Logger   zerolog.Logger

	routes   []routing.Route
	subs     routing.Subscriptions
	schema   routing.Schema
	invoker  *invoke.Invoker
	bus      *eventbus.Bus
	recorder *metrics.Recorder
}

type Option func(*Engine)

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.Logger = logger }
}

func WithMetrics(provider metrics.Provider) Option {
	return func(e *Engine) { e.recorder = metrics.NewRecorder(provider) }
}

// New monta rotas, assinaturas, schema, invoker e barramento a partir do template.
func New(cfg *config.EmulatorConfig, tpl *template.Template, loader invoke.Loader, opts ...Option) (*Engine, error) {
	if cfg == nil || tpl == nil {
		return nil, fmt.Errorf("engine: configuração e template são obrigatórios")
	}
	if loader == nil {
		return nil, fmt.Errorf("engine: loader de módulos é obrigatório")
	}

	e := &Engine{
		Config:   cfg,
		Template: tpl,
		Logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	// 1. Tabelas derivadas do template
	e.routes = routing.BuildRoutes(tpl)
	e.subs = routing.BuildSubscriptions(tpl)
	e.schema = routing.BuildSchema(tpl, e.routes, e.subs, cfg.Server.APIPrefix)

	// 2. Layers entram no search path antes de qualquer invocação
	search := &invoke.SearchPath{}
	roots := make([]string, 0, len(tpl.Layers))
	for _, layer := range tpl.Layers {
		roots = append(roots, layer.ContentURI)
	}
	if err := search.Set(roots...); err != nil {
		return nil, fmt.Errorf("engine: search path: %w", err)
	}

	// 3. Invoker compartilhado pelo gateway e pelo barramento
	e.invoker = invoke.New(loader,
		invoke.WithLogger(e.Logger),
		invoke.WithMetrics(e.recorder),
		invoke.WithSearchPath(search),
	)
	e.bus = eventbus.New(e.invoker, e.subs,
		eventbus.WithLogger(e.Logger),
		eventbus.WithMetrics(e.recorder),
	)

	e.Logger.Info().
		Int("functions", len(tpl.Functions)).
		Int("layers", len(tpl.Layers)).
		Int("routes", len(e.routes)).
		Int("subscriptions", len(e.subs)).
		Msg("Template carregado")

	return e, nil
}

// Mount registra, nesta ordem: status, rotas da API, barramento, invocação
// direta e schema.
func (e *Engine) Mount(router *mux.Router) {
	router.HandleFunc(StatusPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]bool{"available": true})
	}).Methods(http.MethodGet)

	gateway.Mount(router, e.routes, e.invoker, gateway.MountOptions{
		APIPrefix: e.Config.Server.APIPrefix,
		Logger:    e.Logger,
	})

	eventbus.Mount(router, e.bus, e.Logger)

	targets := make([]invoke.Target, 0, len(e.Template.Functions))
	for _, fn := range e.Template.Functions {
		targets = append(targets, invoke.TargetFor(fn))
	}
	gateway.MountDirect(router, targets, e.invoker, e.Logger)

	router.HandleFunc(SchemaPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, e.schema)
	}).Methods(http.MethodGet)
}

// Handler devolve o router completo com observabilidade e, se habilitado, CORS.
// O path chega ao handler sem limpeza ("a//b" não é redirecionado).
func (e *Engine) Handler() http.Handler {
	router := mux.NewRouter().SkipClean(true)
	e.Mount(router)

	var handler http.Handler = gateway.ObservabilityMiddleware(e.Logger, e.recorder)(router)
	if e.Config.Server.CORS {
		handler = gateway.CORSMiddleware(handler)
	}
	return handler
}

func (e *Engine) Schema() routing.Schema { return e.schema }

func (e *Engine) Bus() *eventbus.Bus { return e.bus }

func (e *Engine) Invoker() *invoke.Invoker { return e.invoker }

// Shutdown espera as entregas pendentes do barramento.
func (e *Engine) Shutdown(ctx context.Context) error {
	return e.bus.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}
