package routing

import (
	"github.com/raywall/fast-sam-local/pkg/invoke"
	"github.com/raywall/fast-sam-local/pkg/template"
)

// Subscription associa um padrão source/detail-type a uma função.
type Subscription struct {
	Function    string
	Trigger     string
	Sources     []string
	DetailTypes []string
	Target      invoke.Target
}

// Matches exige as duas condições: source em Sources E detail-type em DetailTypes.
func (s Subscription) Matches(source, detailType string) bool {
	return contains(s.Sources, source) && contains(s.DetailTypes, detailType)
}

// Subscriptions é a tabela de assinaturas, em ordem de função e gatilho.
type Subscriptions []Subscription

// BuildSubscriptions gera uma assinatura por EventPatternTrigger.
func BuildSubscriptions(tpl *template.Template) Subscriptions {
	var subs Subscriptions
	for _, fn := range tpl.Functions {
		target := invoke.TargetFor(fn)
		for _, trigger := range fn.EventPatternTriggers() {
			subs = append(subs, Subscription{
				Function:    fn.Name,
				Trigger:     trigger.Name,
				Sources:     append([]string(nil), trigger.Sources...),
				DetailTypes: append([]string(nil), trigger.DetailTypes...),
				Target:      target,
			})
		}
	}
	return subs
}

// ByFunction agrupa as assinaturas pela função dona.
func (s Subscriptions) ByFunction() map[string][]Subscription {
	out := make(map[string][]Subscription)
	for _, sub := range s {
		out[sub.Function] = append(out[sub.Function], sub)
	}
	return out
}

// Matching filtra, preservando a ordem da tabela, as assinaturas que casam com o evento.
func (s Subscriptions) Matching(source, detailType string) []Subscription {
	var out []Subscription
	for _, sub := range s {
		if sub.Matches(source, detailType) {
			out = append(out, sub)
		}
	}
	return out
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
