package routing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/raywall/fast-sam-local/pkg/invoke"
	"github.com/raywall/fast-sam-local/pkg/template"
)

// MethodAny registra a rota para qualquer método HTTP.
const MethodAny = "ANY"

// Wildcard é o marcador do segmento final coringa em PathPattern.
const Wildcard = "*"

var (
	greedyParam = regexp.MustCompile(`\{([^{}]+)\+\}`)
	namedParam  = regexp.MustCompile(`\{([^{}]+)\}`)
)

// Route é uma entrada da tabela de rotas, derivada de um HTTPTrigger.
type Route struct {
	Function       string
	Trigger        string
	Resource       string   // path original do template, ex: /count/{id}
	PathPattern    string   // /count/{p0}, /files/*
	ParameterNames []string // na ordem dos marcadores {pN}
	WildcardName   string   // nome do parâmetro coringa ("proxy"), vazio se não houver
	Method         string
	Target         invoke.Target
}

// MountPaths devolve os dois pontos de montagem: o path puro e o prefixado.
func (r Route) MountPaths(apiPrefix string) []string {
	return []string{r.PathPattern, apiPrefix + r.PathPattern}
}

// Marker devolve o marcador posicional do i-ésimo parâmetro.
func Marker(i int) string {
	return fmt.Sprintf("p%d", i)
}

// BuildRoutes monta a tabela de rotas: funções em ordem de nome, gatilhos em
// ordem de chave do evento.
func BuildRoutes(tpl *template.Template) []Route {
	var routes []Route
	for _, fn := range tpl.Functions {
		target := invoke.TargetFor(fn)
		for _, trigger := range fn.HTTPTriggers() {
			pattern, names, wildcard := CompilePath(trigger.Path)
			routes = append(routes, Route{
				Function:       fn.Name,
				Trigger:        trigger.Name,
				Resource:       trigger.Path,
				PathPattern:    pattern,
				ParameterNames: names,
				WildcardName:   wildcard,
				Method:         NormalizeMethod(trigger.Method),
				Target:         target,
			})
		}
	}
	return routes
}

// CompilePath converte o path do template no padrão interno:
// 1. {proxy+} vira o coringa final
// 2. garante a barra inicial
// 3. cada {nome} vira {pN}, registrando o nome na ordem em que aparece
func CompilePath(raw string) (pattern string, names []string, wildcard string) {
	pattern = raw
	if m := greedyParam.FindStringSubmatch(pattern); m != nil {
		wildcard = m[1]
		pattern = strings.Replace(pattern, m[0], Wildcard, 1)
	}

	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}

	names = []string{}
	pattern = namedParam.ReplaceAllStringFunc(pattern, func(match string) string {
		names = append(names, match[1:len(match)-1])
		return "{" + Marker(len(names)-1) + "}"
	})
	return pattern, names, wildcard
}

// NormalizeMethod coloca o método em caixa alta; vazio ou ANY vira MethodAny.
func NormalizeMethod(method string) string {
	m := strings.ToUpper(strings.TrimSpace(method))
	if m == "" || m == MethodAny {
		return MethodAny
	}
	return m
}
