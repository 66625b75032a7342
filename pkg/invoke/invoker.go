package invoke

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	applog "github.com/raywall/fast-sam-local/pkg/logger"
	"github.com/raywall/fast-sam-local/pkg/metrics"
	"github.com/rs/zerolog"
)

const functionArnPrefix = "arn:aws:lambda:us-east-1:123456789012:function:"

// Invoker resolve Targets para handlers e os executa, contendo qualquer falha.
type Invoker struct {
	loader   Loader
	search   *SearchPath
	logger   zerolog.Logger
	recorder *metrics.Recorder

	cache sync.Map // Target -> lambda.Handler
}

type Option func(*Invoker)

func WithLogger(logger zerolog.Logger) Option {
	return func(i *Invoker) { i.logger = applog.Component(logger, "Invoker") }
}

func WithMetrics(recorder *metrics.Recorder) Option {
	return func(i *Invoker) { i.recorder = recorder }
}

func WithSearchPath(search *SearchPath) Option {
	return func(i *Invoker) { i.search = search }
}

func New(loader Loader, opts ...Option) *Invoker {
	i := &Invoker{
		loader: loader,
		search: &SearchPath{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Resolve localiza o handler do Target. O resultado é cacheado, pois depende
// apenas do template.
func (i *Invoker) Resolve(ctx context.Context, t Target) (lambda.Handler, error) {
	if cached, ok := i.cache.Load(t); ok {
		return cached.(lambda.Handler), nil
	}

	module, err := i.loadModule(ctx, t)
	if err != nil {
		return nil, err
	}

	handler, err := walk(module, t.Entry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t, err)
	}

	i.cache.Store(t, handler)
	return handler, nil
}

func (i *Invoker) loadModule(ctx context.Context, t Target) (Module, error) {
	for _, candidate := range t.Candidates(i.search.Roots()) {
		module, err := i.loader.Load(ctx, candidate)
		if err == nil {
			return module, nil
		}
		if !errors.Is(err, ErrModuleNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, t.ModulePath())
}

// walk percorre a entrada pontuada até um membro invocável.
func walk(module Module, entry string) (lambda.Handler, error) {
	if entry == "" {
		return nil, fmt.Errorf("%w: entrada vazia", ErrHandlerNotFound)
	}

	var current any = module
	for _, part := range strings.Split(entry, ".") {
		m, ok := current.(Module)
		if !ok {
			return nil, fmt.Errorf("%w: '%s' não é um módulo", ErrHandlerNotFound, part)
		}
		if current, ok = m.Lookup(part); !ok {
			return nil, fmt.Errorf("%w: membro '%s' ausente", ErrHandlerNotFound, part)
		}
	}

	switch h := current.(type) {
	case lambda.Handler:
		return h, nil
	case nil:
		return nil, fmt.Errorf("%w: membro nulo", ErrHandlerNotFound)
	}
	if reflect.TypeOf(current).Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %T não é invocável", ErrHandlerNotFound, current)
	}
	return lambda.NewHandler(current), nil
}

// Invoke resolve e executa o Target com o payload serializado. Erros de
// resolução, erros do handler e panics são devolvidos como *Error.
func (i *Invoker) Invoke(ctx context.Context, t Target, payload []byte) (out []byte, err error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := i.logger.With().Str("function", t.Function).Str("request_id", requestID).Logger()

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &Error{
				Function: t.Function,
				Type:     "Runtime.Panic",
				Message:  fmt.Sprint(r),
			}
		}

		tags := map[string]string{"function": t.Function}
		i.record(metrics.InvokeCount, 1, tags)
		i.record(metrics.InvokeDuration, float64(time.Since(start).Milliseconds()), tags)
		if err != nil {
			i.record(metrics.InvokeErrors, 1, tags)
			log.Error().Err(err).Msg("Falha na invocação")
			return
		}
		log.Debug().Dur("duration", time.Since(start)).Msg("Invocação concluída")
	}()

	// 1. Resolução
	handler, rerr := i.Resolve(ctx, t)
	if rerr != nil {
		resolveErr := newError(t.Function, rerr)
		resolveErr.Type = "Runtime.HandlerNotFound"
		if errors.Is(rerr, ErrModuleNotFound) {
			resolveErr.Type = "Runtime.ImportModuleError"
		}
		return nil, resolveErr
	}

	// 2. Contexto Lambda
	ctx = lambdacontext.NewContext(ctx, &lambdacontext.LambdaContext{
		AwsRequestID:       requestID,
		InvokedFunctionArn: functionArnPrefix + t.Function,
	})

	// 3. Execução
	log.Debug().Str("target", t.String()).Msg("Invocando handler")
	out, herr := handler.Invoke(ctx, payload)
	if herr != nil {
		var invokeErr *Error
		if errors.As(herr, &invokeErr) {
			if invokeErr.Function == "" {
				invokeErr.Function = t.Function
			}
			return nil, invokeErr
		}
		return nil, newError(t.Function, herr)
	}
	return out, nil
}

func (i *Invoker) record(id string, value float64, tags map[string]string) {
	if err := i.recorder.Record(id, value, tags); err != nil {
		i.logger.Warn().Err(err).Str("metric", id).Msg("Falha ao registrar métrica")
	}
}
