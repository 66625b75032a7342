package invoke

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	// ErrModuleNotFound indica que nenhum módulo foi registrado no caminho pedido.
	ErrModuleNotFound = errors.New("invoke: módulo não encontrado")
	// ErrHandlerNotFound indica que o membro pedido não existe ou não é invocável.
	ErrHandlerNotFound = errors.New("invoke: handler não encontrado")
	// ErrSearchPathFrozen indica uma segunda tentativa de definir o SearchPath.
	ErrSearchPathFrozen = errors.New("invoke: search path já definido")
)

// Module expõe os membros de um módulo de handlers. Um membro pode ser uma
// função compatível com lambda.NewHandler, um lambda.Handler ou outro Module.
type Module interface {
	Lookup(name string) (any, bool)
}

// Exports é a forma estática de Module.
type Exports map[string]any

func (e Exports) Lookup(name string) (any, bool) {
	v, ok := e[name]
	return v, ok
}

// Loader localiza um módulo pelo caminho (relativo ao diretório do template).
type Loader interface {
	Load(ctx context.Context, modulePath string) (Module, error)
}

// Registry é o Loader padrão: módulos registrados em memória pelo programa
// que hospeda o emulador.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Exports
}

func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Exports)}
}

// Register associa um módulo a um caminho, ex: "src/count/count".
func (r *Registry) Register(modulePath string, exports Exports) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[cleanModulePath(modulePath)] = exports
}

// RegisterHandler registra um único membro; entry pontuado cria os níveis aninhados.
func (r *Registry) RegisterHandler(modulePath, entry string, handler any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cleanModulePath(modulePath)
	current, ok := r.modules[key]
	if !ok {
		current = Exports{}
		r.modules[key] = current
	}

	parts := strings.Split(entry, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(Exports)
		if !ok {
			next = Exports{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = handler
}

func (r *Registry) Load(_ context.Context, modulePath string) (Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[cleanModulePath(modulePath)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, modulePath)
	}
	return m, nil
}

// SearchPath guarda as raízes adicionais (layers) usadas na resolução de módulos.
// É definido uma única vez na inicialização e apenas lido depois disso.
type SearchPath struct {
	roots atomic.Pointer[[]string]
}

// Set define as raízes; chamadas seguintes falham com ErrSearchPathFrozen.
// A lista é montada antes de ser publicada.
func (s *SearchPath) Set(roots ...string) error {
	cleaned := make([]string, 0, len(roots))
	for _, root := range roots {
		cleaned = append(cleaned, cleanModulePath(root))
	}
	if !s.roots.CompareAndSwap(nil, &cleaned) {
		return ErrSearchPathFrozen
	}
	return nil
}

// Roots devolve as raízes definidas (nil antes de Set).
func (s *SearchPath) Roots() []string {
	if s == nil {
		return nil
	}
	if roots := s.roots.Load(); roots != nil {
		return *roots
	}
	return nil
}

func cleanModulePath(p string) string {
	return strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "./")
}
