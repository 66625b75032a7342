package template

import "errors"

// Tags de tipo reconhecidos no bloco Resources.
const (
	TypeFunction = "AWS::Serverless::Function"
	TypeLayer    = "AWS::Serverless::LayerVersion"
)

// Tags de tipo reconhecidas nos Events de uma função.
const (
	EventTypeAPI             = "Api"
	EventTypeHTTPAPI         = "HttpApi"
	EventTypeEventBridgeRule = "EventBridgeRule"
	EventTypeCloudWatchEvent = "CloudWatchEvent"
)

// ErrMissingResources indica um template sem bloco Resources utilizável.
// É um erro fatal de inicialização.
var ErrMissingResources = errors.New("template: bloco 'Resources' ausente ou malformado")

// Template é a visão tipada do documento, já classificada.
// Funções e layers são ordenados pelo nome lógico.
type Template struct {
	BaseDir   string // diretório do template; CodeURI/ContentURI são relativos a ele
	Functions []Function
	Layers    []Layer
}

// Function representa um recurso AWS::Serverless::Function.
type Function struct {
	Name        string
	CodeURI     string // relativo a Template.BaseDir, já normalizado
	Handler     string // forma original "<modulo>.<entrada>"
	Module      string
	Entry       string // pode conter pontos (acesso aninhado)
	Runtime     string
	Environment map[string]string
	Triggers    []Trigger
}

// Layer representa um recurso AWS::Serverless::LayerVersion.
type Layer struct {
	Name       string
	ContentURI string
}

// Trigger é a variante fechada de gatilhos suportados.
type Trigger interface {
	// EventName é a chave do evento dentro de Events.
	EventName() string
	isTrigger()
}

// HTTPTrigger é um evento do tipo Api/HttpApi.
type HTTPTrigger struct {
	Name   string
	Path   string
	Method string
}

func (t HTTPTrigger) EventName() string { return t.Name }
func (HTTPTrigger) isTrigger()          {}

// EventPatternTrigger é um evento EventBridgeRule com padrão source/detail-type.
type EventPatternTrigger struct {
	Name        string
	Sources     []string
	DetailTypes []string
}

func (t EventPatternTrigger) EventName() string { return t.Name }
func (EventPatternTrigger) isTrigger()          {}

// HTTPTriggers filtra os gatilhos HTTP da função, preservando a ordem.
func (f Function) HTTPTriggers() []HTTPTrigger {
	var out []HTTPTrigger
	for _, t := range f.Triggers {
		if h, ok := t.(HTTPTrigger); ok {
			out = append(out, h)
		}
	}
	return out
}

// EventPatternTriggers filtra os gatilhos de padrão de evento da função.
func (f Function) EventPatternTriggers() []EventPatternTrigger {
	var out []EventPatternTrigger
	for _, t := range f.Triggers {
		if e, ok := t.(EventPatternTrigger); ok {
			out = append(out, e)
		}
	}
	return out
}

// Function busca uma função pelo nome lógico.
func (t *Template) Function(name string) (Function, bool) {
	for _, fn := range t.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return Function{}, false
}
