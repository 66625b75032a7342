package template

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// --- Interfaces para Mocking ---

type S3Downloader interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type DynamoGetter interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Loader lê o template de múltiplas fontes (arquivo local, S3, DynamoDB)
// e devolve a visão classificada.
type Loader struct {
	// Parameters sobrescreve os Defaults dos Parameters do template.
	Parameters map[string]string
	// BaseDir é usado quando a fonte não é um arquivo local (s3://, dynamodb://).
	BaseDir string

	s3Client     S3Downloader
	dynamoClient DynamoGetter
}

// NewLoader cria um loader; os clientes AWS são criados sob demanda.
func NewLoader(params map[string]string) *Loader {
	return &Loader{Parameters: params, BaseDir: "."}
}

// Load detecta o esquema da fonte, decodifica e classifica o template.
func (l *Loader) Load(ctx context.Context, source string) (*Template, error) {
	var (
		raw     []byte
		err     error
		baseDir = l.BaseDir
	)

	switch {
	case strings.HasPrefix(source, "s3://"):
		client, cerr := l.s3(ctx)
		if cerr != nil {
			return nil, cerr
		}
		raw, err = loadFromS3(ctx, client, source)

	case strings.HasPrefix(source, "dynamodb://"):
		client, cerr := l.dynamo(ctx)
		if cerr != nil {
			return nil, cerr
		}
		raw, err = loadFromDynamoDB(ctx, client, source)

	default:
		cleanPath := strings.TrimPrefix(source, "file://")
		raw, err = os.ReadFile(cleanPath)
		baseDir = filepath.ToSlash(filepath.Dir(cleanPath))
	}

	if err != nil {
		return nil, fmt.Errorf("falha leitura template (%s): %w", source, err)
	}

	tree, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("falha ao decodificar template (%s): %w", source, err)
	}

	return Classify(tree, ClassifyOptions{BaseDir: baseDir, Parameters: l.Parameters})
}

func (l *Loader) s3(ctx context.Context) (S3Downloader, error) {
	if l.s3Client == nil {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("falha config AWS: %w", err)
		}
		l.s3Client = s3.NewFromConfig(cfg)
	}
	return l.s3Client, nil
}

func (l *Loader) dynamo(ctx context.Context) (DynamoGetter, error) {
	if l.dynamoClient == nil {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("falha config AWS: %w", err)
		}
		l.dynamoClient = dynamodb.NewFromConfig(cfg)
	}
	return l.dynamoClient, nil
}

func loadFromS3(ctx context.Context, client S3Downloader, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL S3 inválida: %w", err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// loadFromDynamoDB aceita dynamodb://tabela/chave?col=template&pk=id
func loadFromDynamoDB(ctx context.Context, client DynamoGetter, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("URL DynamoDB inválida: %w", err)
	}

	tableName := u.Host
	pkValue := strings.TrimPrefix(u.Path, "/")

	colName := u.Query().Get("col")
	if colName == "" {
		colName = "template"
	}
	pkName := u.Query().Get("pk")
	if pkName == "" {
		pkName = "id"
	}

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key: map[string]types.AttributeValue{
			pkName: &types.AttributeValueMemberS{Value: pkValue},
		},
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("item não encontrado no DynamoDB")
	}

	var itemMap map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &itemMap); err != nil {
		return nil, err
	}

	content, ok := itemMap[colName].(string)
	if !ok {
		return nil, fmt.Errorf("coluna '%s' inválida ou vazia no DynamoDB", colName)
	}
	return []byte(content), nil
}
