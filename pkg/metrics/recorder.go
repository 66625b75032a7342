package metrics

import (
	"fmt"
	"sort"
)

// Recorder resolve IDs de métricas para suas definições e envia ao Provider.
type Recorder struct {
	definitions map[string]MetricDefinition
	provider    Provider
}

// NewRecorder cria um Recorder com o catálogo padrão. Um provider nil
// descarta todas as métricas.
func NewRecorder(provider Provider) *Recorder {
	return &Recorder{definitions: Definitions, provider: provider}
}

// Record envia o valor da métrica identificada por id com as tags informadas.
func (r *Recorder) Record(id string, value float64, tags map[string]string) error {
	if r == nil || r.provider == nil {
		return nil
	}

	// 1. Buscar definição da métrica (Nome e Tipo)
	def, exists := r.definitions[id]
	if !exists {
		return fmt.Errorf("métrica não definida: %s", id)
	}

	// 2. Tags em ordem estável
	finalTags := formatTags(tags)

	// 3. Enviar para o Provider
	switch def.Type {
	case TypeCount:
		return r.provider.Count(def.Name, value, finalTags)
	case TypeGauge:
		return r.provider.Gauge(def.Name, value, finalTags)
	case TypeHistogram:
		return r.provider.Histogram(def.Name, value, finalTags)
	default:
		return fmt.Errorf("tipo de métrica desconhecido: %s", def.Type)
	}
}

func formatTags(tags map[string]string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for k, v := range tags {
		out = append(out, fmt.Sprintf("%s:%s", k, v))
	}
	sort.Strings(out)
	return out
}
