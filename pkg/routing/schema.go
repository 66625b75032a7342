package routing

import (
	"path"

	"github.com/raywall/fast-sam-local/pkg/template"
)

// Schema é o resumo de introspecção das tabelas derivadas do template.
// Construído uma vez; somente leitura.
type Schema struct {
	API         map[string]FunctionSchema       `json:"api"`
	Layers      map[string]string               `json:"layers"`
	EventBridge map[string][]SubscriptionSchema `json:"eventBridge"`
}

type FunctionSchema struct {
	Path     string          `json:"path"`
	Handlers []HandlerSchema `json:"handlers"`
}

type HandlerSchema struct {
	Path       string   `json:"path"`
	Method     string   `json:"method"`
	Parameters []string `json:"parameters,omitempty"`
}

type SubscriptionSchema struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	Function    string   `json:"function"`
	Sources     []string `json:"sources"`
	DetailTypes []string `json:"detailTypes"`
}

// BuildSchema resume rotas (nos dois pontos de montagem), layers e assinaturas.
func BuildSchema(tpl *template.Template, routes []Route, subs Subscriptions, apiPrefix string) Schema {
	schema := Schema{
		API:         map[string]FunctionSchema{},
		Layers:      map[string]string{},
		EventBridge: map[string][]SubscriptionSchema{},
	}

	for _, route := range routes {
		fs, ok := schema.API[route.Function]
		if !ok {
			fs = FunctionSchema{Path: entryPath(tpl.BaseDir, route.Target.ModulePath())}
		}
		for _, mount := range route.MountPaths(apiPrefix) {
			fs.Handlers = append(fs.Handlers, HandlerSchema{
				Path:       mount,
				Method:     route.Method,
				Parameters: route.ParameterNames,
			})
		}
		schema.API[route.Function] = fs
	}

	for _, layer := range tpl.Layers {
		schema.Layers[layer.Name] = entryPath(tpl.BaseDir, layer.ContentURI)
	}

	for _, sub := range subs {
		schema.EventBridge[sub.Function] = append(schema.EventBridge[sub.Function], SubscriptionSchema{
			Name:        sub.Trigger,
			Path:        entryPath(tpl.BaseDir, sub.Target.ModulePath()),
			Function:    sub.Target.Entry,
			Sources:     sub.Sources,
			DetailTypes: sub.DetailTypes,
		})
	}

	return schema
}

func entryPath(baseDir, rel string) string {
	if baseDir == "" {
		return rel
	}
	return path.Join(baseDir, rel)
}
