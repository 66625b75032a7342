package template

import (
	"path"
	"sort"
	"strings"
)

// ClassifyOptions controla a resolução de valores durante a classificação.
type ClassifyOptions struct {
	// BaseDir é o diretório do template (registrado em Template.BaseDir).
	BaseDir string
	// Parameters sobrescreve os Defaults declarados em Parameters do template.
	Parameters map[string]string
}

// Classify percorre a árvore genérica e extrai funções, gatilhos e layers.
// Só falha quando o bloco Resources está ausente ou não é um mapa.
func Classify(tree map[string]any, opts ClassifyOptions) (*Template, error) {
	resources, ok := tree["Resources"].(map[string]any)
	if !ok {
		return nil, ErrMissingResources
	}

	r := resolver{params: templateParameters(tree, opts.Parameters)}
	globals := asMap(asMap(tree["Globals"])["Function"])

	tpl := &Template{BaseDir: opts.BaseDir}

	for _, name := range sortedKeys(resources) {
		resource := asMap(resources[name])
		if resource == nil {
			continue
		}
		props := asMap(resource["Properties"])

		switch r.str(resource["Type"]) {
		case TypeFunction:
			tpl.Functions = append(tpl.Functions, classifyFunction(r, name, props, globals))
		case TypeLayer:
			tpl.Layers = append(tpl.Layers, Layer{
				Name:       name,
				ContentURI: cleanURI(r.str(props["ContentUri"])),
			})
		}
	}

	return tpl, nil
}

func classifyFunction(r resolver, name string, props, globals map[string]any) Function {
	codeURI := r.str(props["CodeUri"])
	if codeURI == "" {
		codeURI = r.str(globals["CodeUri"])
	}
	handler := r.str(props["Handler"])
	if handler == "" {
		handler = r.str(globals["Handler"])
	}
	runtime := r.str(props["Runtime"])
	if runtime == "" {
		runtime = r.str(globals["Runtime"])
	}

	// "<modulo>.<entrada>"; a entrada preserva os pontos restantes
	module, entry, _ := strings.Cut(handler, ".")

	fn := Function{
		Name:        name,
		CodeURI:     cleanURI(codeURI),
		Handler:     handler,
		Module:      module,
		Entry:       entry,
		Runtime:     runtime,
		Environment: environment(r, globals, props),
	}

	// Gatilhos em ordem de chave do evento
	events := asMap(props["Events"])
	for _, eventName := range sortedKeys(events) {
		event := asMap(events[eventName])
		if event == nil {
			continue
		}
		if trigger := classifyTrigger(r, eventName, event); trigger != nil {
			fn.Triggers = append(fn.Triggers, trigger)
		}
	}

	return fn
}

// classifyTrigger devolve nil para tipos de evento não suportados.
func classifyTrigger(r resolver, name string, event map[string]any) Trigger {
	props := asMap(event["Properties"])

	switch r.str(event["Type"]) {
	case EventTypeAPI, EventTypeHTTPAPI:
		return HTTPTrigger{
			Name:   name,
			Path:   r.str(props["Path"]),
			Method: r.str(props["Method"]),
		}
	case EventTypeEventBridgeRule, EventTypeCloudWatchEvent:
		pattern := asMap(props["Pattern"])
		return EventPatternTrigger{
			Name:        name,
			Sources:     resolveList(r, pattern["source"]),
			DetailTypes: resolveList(r, pattern["detail-type"]),
		}
	}
	return nil
}

func resolveList(r resolver, value any) []string {
	if m, ok := value.(map[string]any); ok {
		return []string{r.str(m)}
	}
	if list, ok := value.([]any); ok {
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, r.str(item))
		}
		return out
	}
	return asStringList(value)
}

func environment(r resolver, globals, props map[string]any) map[string]string {
	env := map[string]string{}
	for _, src := range []map[string]any{globals, props} {
		vars := asMap(asMap(src["Environment"])["Variables"])
		for k, v := range vars {
			env[k] = r.str(v)
		}
	}
	return env
}

func templateParameters(tree map[string]any, overrides map[string]string) map[string]string {
	params := map[string]string{}
	for name, decl := range asMap(tree["Parameters"]) {
		if def, ok := asMap(decl)["Default"]; ok {
			params[name] = resolver{}.str(def)
		}
	}
	for k, v := range overrides {
		params[k] = v
	}
	return params
}

func cleanURI(uri string) string {
	if uri == "" || strings.Contains(uri, "://") {
		return uri
	}
	return path.Clean(uri)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
