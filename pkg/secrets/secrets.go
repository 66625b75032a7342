package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

var (
	awsCfg  aws.Config
	awsOnce sync.Once
	awsErr  error
)

// GetAWSConfig carrega a configuração da AWS (env vars, profile, IAM role) de forma lazy-singleton.
func GetAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	awsOnce.Do(func() {
		opts := []func(*config.LoadOptions) error{}
		if region != "" {
			opts = append(opts, config.WithRegion(region))
		}
		awsCfg, awsErr = config.LoadDefaultConfig(ctx, opts...)
	})
	return awsCfg, awsErr
}

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Parameter lê um parâmetro do SSM Parameter Store usando o cliente real.
func Parameter(ctx context.Context, region, path string) (string, error) {
	cfg, err := GetAWSConfig(ctx, region)
	if err != nil {
		return "", err
	}
	return getParameter(ctx, ssm.NewFromConfig(cfg), path)
}

func getParameter(ctx context.Context, client SSMClient, path string) (string, error) {
	decrypt := true
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &path,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return "", fmt.Errorf("erro no SSM GetParameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parâmetro SSM '%s' sem valor", path)
	}
	return *out.Parameter.Value, nil
}

// Secret lê um segredo do Secrets Manager. Segredos JSON com uma única
// chave são reduzidos ao valor dessa chave.
func Secret(ctx context.Context, region, secretID string) (string, error) {
	cfg, err := GetAWSConfig(ctx, region)
	if err != nil {
		return "", err
	}
	return getSecret(ctx, secretsmanager.NewFromConfig(cfg), secretID)
}

func getSecret(ctx context.Context, client SecretsClient, secretID string) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		return "", fmt.Errorf("erro no SecretsManager: %w", err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("segredo '%s' sem SecretString", secretID)
	}

	val := *out.SecretString

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(val), &data); err == nil && len(data) == 1 {
		for _, v := range data {
			return fmt.Sprintf("%v", v), nil
		}
	}
	return val, nil
}
