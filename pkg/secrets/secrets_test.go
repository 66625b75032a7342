package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockSSM struct {
	GetParameterFunc func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func (m *MockSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return m.GetParameterFunc(ctx, params, optFns...)
}

type MockSecrets struct {
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func (m *MockSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return m.GetSecretValueFunc(ctx, params, optFns...)
}

func strPtr(s string) *string { return &s }

func TestGetParameter(t *testing.T) {
	t.Run("Sucesso", func(t *testing.T) {
		client := &MockSSM{
			GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				assert.Equal(t, "/app/table", *params.Name)
				assert.True(t, *params.WithDecryption)
				return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: strPtr("counter-table")}}, nil
			},
		}

		val, err := getParameter(context.Background(), client, "/app/table")
		require.NoError(t, err)
		assert.Equal(t, "counter-table", val)
	})

	t.Run("Erro na AWS", func(t *testing.T) {
		client := &MockSSM{
			GetParameterFunc: func(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
				return nil, errors.New("access denied")
			},
		}

		_, err := getParameter(context.Background(), client, "/app/table")
		assert.ErrorContains(t, err, "access denied")
	})
}

func TestGetSecret(t *testing.T) {
	newClient := func(secret string) *MockSecrets {
		return &MockSecrets{
			GetSecretValueFunc: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return &secretsmanager.GetSecretValueOutput{SecretString: strPtr(secret)}, nil
			},
		}
	}

	t.Run("Texto puro", func(t *testing.T) {
		val, err := getSecret(context.Background(), newClient("s3cr3t"), "db")
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t", val)
	})

	t.Run("JSON com uma chave", func(t *testing.T) {
		val, err := getSecret(context.Background(), newClient(`{"password":"abc"}`), "db")
		require.NoError(t, err)
		assert.Equal(t, "abc", val)
	})

	t.Run("JSON com várias chaves", func(t *testing.T) {
		raw := `{"user":"u","password":"abc"}`
		val, err := getSecret(context.Background(), newClient(raw), "db")
		require.NoError(t, err)
		assert.Equal(t, raw, val)
	})
}
