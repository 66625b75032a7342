package injector_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/raywall/fast-sam-local/pkg/config/injector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestConfig struct {
	APIKey      string                 // Caso 1: Interpolação String "${env.KEY}"
	Description string                 // Caso 2: Texto misto "Service running in ${env.REGION}"
	Meta        map[string]interface{} // Caso 3: Map Dinâmico
	Labels      map[string]string
	Nested      *NestedConfig
}

type NestedConfig struct {
	URL string
}

func TestInjector_Inject_Environment(t *testing.T) {
	os.Setenv("API_KEY", "12345-abcde")
	os.Setenv("REGION", "us-east-1")
	os.Setenv("DB_HOST", "localhost")
	defer func() {
		os.Unsetenv("API_KEY")
		os.Unsetenv("REGION")
		os.Unsetenv("DB_HOST")
	}()

	inj := injector.New()

	target := &TestConfig{
		APIKey:      "${env.API_KEY}",
		Description: "Service running in ${env.REGION}",
		Meta: map[string]interface{}{
			"db_host": "${env.DB_HOST}",
			"timeout": 5000, // Inteiro não deve ser tocado
		},
		Labels: map[string]string{"region": "${env.REGION}"},
		Nested: &NestedConfig{
			URL: "https://${env.REGION}.api.com",
		},
	}

	err := inj.Inject(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, "12345-abcde", target.APIKey, "Interpolação direta falhou")
	assert.Equal(t, "Service running in us-east-1", target.Description, "Interpolação mista falhou")
	assert.Equal(t, "localhost", target.Meta["db_host"], "Interpolação em mapa falhou")
	assert.Equal(t, 5000, target.Meta["timeout"])
	assert.Equal(t, "us-east-1", target.Labels["region"])
	assert.Equal(t, "https://us-east-1.api.com", target.Nested.URL, "Interpolação aninhada falhou")
}

func TestInjector_ResolveMap_CustomFetcher(t *testing.T) {
	inj := injector.NewWithFetcher(func(ctx context.Context, sourceType, key string) (string, error) {
		if sourceType == "ssm" && key == "/counter/table" {
			return "counter-table", nil
		}
		return "", errors.New("não encontrado")
	})

	out, err := inj.ResolveMap(context.Background(), map[string]string{
		"DYNAMO_DB_TABLE": "${ssm./counter/table}",
		"STAGE":           "local",
	})
	require.NoError(t, err)
	assert.Equal(t, "counter-table", out["DYNAMO_DB_TABLE"])
	assert.Equal(t, "local", out["STAGE"])

	_, err = inj.ResolveMap(context.Background(), map[string]string{"X": "${secret.missing}"})
	assert.Error(t, err)
}

func TestInjector_Inject_RequiresPointer(t *testing.T) {
	err := injector.New().Inject(context.Background(), TestConfig{})
	assert.Error(t, err)
}
