package invoke

import (
	"path"

	"github.com/raywall/fast-sam-local/pkg/template"
)

// Target identifica o ponto de entrada de uma função.
type Target struct {
	Function string
	CodeURI  string // relativo ao diretório do template
	Module   string
	Entry    string // pode conter pontos (membros aninhados)
}

// TargetFor monta o Target de uma função classificada.
func TargetFor(fn template.Function) Target {
	return Target{
		Function: fn.Name,
		CodeURI:  fn.CodeURI,
		Module:   fn.Module,
		Entry:    fn.Entry,
	}
}

// ModulePath é o caminho principal do módulo: CodeURI/Module.
func (t Target) ModulePath() string {
	return cleanModulePath(path.Join(t.CodeURI, t.Module))
}

// Candidates lista, em ordem, os caminhos tentados na resolução:
// CodeURI/Module, depois layer/Module para cada layer, depois Module.
func (t Target) Candidates(layers []string) []string {
	seen := map[string]bool{}
	var out []string

	add := func(p string) {
		p = cleanModulePath(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	add(t.ModulePath())
	for _, layer := range layers {
		add(path.Join(layer, t.Module))
	}
	add(t.Module)
	return out
}

// String no formato "<caminho>.<entrada>", usado em logs.
func (t Target) String() string {
	return t.ModulePath() + "." + t.Entry
}
