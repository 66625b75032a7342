package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/raywall/fast-sam-local/pkg/config/injector"
)

// parametersFile espelha o arquivo de ambiente local: {"Parameters": {...}}.
type parametersFile struct {
	Parameters map[string]interface{} `json:"Parameters"`
}

// LoadParameters lê o arquivo de parâmetros, resolvendo ${env.X}, ${ssm.X}
// e ${secret.X} nos valores. Valores não textuais são convertidos com %v.
func LoadParameters(ctx context.Context, path string, inj *injector.Injector) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha leitura parâmetros (%s): %w", path, err)
	}

	var file parametersFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("JSON de parâmetros malformado: %w", err)
	}

	raw := make(map[string]string, len(file.Parameters))
	for k, v := range file.Parameters {
		raw[k] = fmt.Sprintf("%v", v)
	}

	if inj == nil {
		inj = injector.New()
	}
	return inj.ResolveMap(ctx, raw)
}

// ExportEnvironment publica os parâmetros como variáveis de ambiente do processo,
// como os handlers esperam encontrá-las em execução real.
func ExportEnvironment(params map[string]string) error {
	for k, v := range params {
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("falha ao definir %s: %w", k, err)
		}
	}
	return nil
}
