package dyndb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// ErrNotFound – erro padrão quando o item não existe
var ErrNotFound = errors.New("dyndb: item not found")

// DynamoDBClient interface para abstrair o cliente DynamoDB
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store — interface principal (genérica)
type Store[T any] interface {
	Get(ctx context.Context, hashKey, sortKey any) (*T, error)
	Put(ctx context.Context, item T) error
	Delete(ctx context.Context, hashKey, sortKey any) error

	// Add soma delta ao atributo numérico e devolve o item atualizado.
	Add(ctx context.Context, hashKey, sortKey any, attribute string, delta int64) (*T, error)
}

// TableConfig — configuração da tabela
type TableConfig[T any] struct {
	TableName string `env:"DYNAMODB_TABLE_NAME"`
	HashKey   string `env:"DYNAMODB_HASH_KEY" envDefault:"id"`
	SortKey   string `env:"DYNAMODB_SORT_KEY"` // opcional
}
