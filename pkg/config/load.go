package config

import (
	"context"
	"fmt"
	"os"

	"github.com/raywall/fast-sam-local/envloader"
	"github.com/raywall/fast-sam-local/pkg/config/injector"
	"gopkg.in/yaml.v2"
)

// Load monta a configuração do emulador: defaults e variáveis de ambiente
// (envloader), arquivo YAML opcional por cima e, por fim, interpolação ${...}.
// A validação fica a cargo do chamador, depois de aplicar as flags da CLI.
func Load(ctx context.Context, path string) (*EmulatorConfig, error) {
	var cfg EmulatorConfig

	// 1. Defaults + ambiente
	if err := envloader.Load(&cfg); err != nil {
		return nil, fmt.Errorf("falha ao carregar variáveis de ambiente: %w", err)
	}

	// 2. Arquivo (opcional)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("falha leitura config (%s): %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("YAML malformado: %w", err)
		}
	}

	// 3. Injection (Env/Secrets/SSM)
	if err := injector.New().Inject(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("falha na injeção de variáveis: %w", err)
	}

	return &cfg, nil
}
