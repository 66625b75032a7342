package template

import (
	"fmt"
	"regexp"
	"strings"
)

var subVarRegex = regexp.MustCompile(`\$\{([^}!]+)\}`)

func asMap(value any) map[string]any {
	if m, ok := value.(map[string]any); ok {
		return m
	}
	return nil
}

// asStringList normaliza escalar ou lista para []string (escalar vira lista de 1).
func asStringList(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return []string{fmt.Sprint(v)}
	}
}

// resolver resolve o subconjunto de funções intrínsecas que afeta roteamento
// (Ref, Fn::Sub, Fn::Join) usando os valores de parâmetros do template.
type resolver struct {
	params map[string]string
}

func (r resolver) str(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if s, ok := r.intrinsic(v); ok {
			return s
		}
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
}

func (r resolver) intrinsic(m map[string]any) (string, bool) {
	if len(m) != 1 {
		return "", false
	}

	if ref, ok := m["Ref"]; ok {
		name := r.str(ref)
		if val, ok := r.params[name]; ok {
			return val, true
		}
		return name, true
	}

	if sub, ok := m["Fn::Sub"]; ok {
		switch typed := sub.(type) {
		case string:
			return r.substitute(typed, nil), true
		case []any:
			if len(typed) == 2 {
				vars := map[string]string{}
				for k, v := range asMap(typed[1]) {
					vars[k] = r.str(v)
				}
				return r.substitute(r.str(typed[0]), vars), true
			}
		}
		return "", false
	}

	if join, ok := m["Fn::Join"]; ok {
		args, isList := join.([]any)
		if !isList || len(args) != 2 {
			return "", false
		}
		items, isList := args[1].([]any)
		if !isList {
			return "", false
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, r.str(item))
		}
		return strings.Join(parts, r.str(args[0])), true
	}

	return "", false
}

func (r resolver) substitute(text string, vars map[string]string) string {
	return subVarRegex.ReplaceAllStringFunc(text, func(match string) string {
		name := match[2 : len(match)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		if v, ok := r.params[name]; ok {
			return v
		}
		return match
	})
}
