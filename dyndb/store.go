package dyndb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/fast-sam-local/envloader"
)

type dynamoStore[T any] struct {
	client DynamoDBClient
	cfg    TableConfig[T]
}

// New cria um store reutilizável
func New[T any](client DynamoDBClient, cfg TableConfig[T]) Store[T] {
	if cfg.TableName == "" {
		_ = envloader.Load(&cfg)
	}

	return &dynamoStore[T]{
		client: client,
		cfg:    cfg,
	}
}

// Get item por chave primária
func (s *dynamoStore[T]) Get(ctx context.Context, hashKey, sortKey any) (*T, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.cfg.TableName),
		Key:            s.key(hashKey, sortKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamostore: get failed: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	return unmarshal[T](out.Item)
}

// Put item (upsert)
func (s *dynamoStore[T]) Put(ctx context.Context, item T) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("dynamostore: marshal failed: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.cfg.TableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("dynamostore: put failed: %w", err)
	}
	return nil
}

// Delete item
func (s *dynamoStore[T]) Delete(ctx context.Context, hashKey, sortKey any) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.cfg.TableName),
		Key:       s.key(hashKey, sortKey),
	})
	if err != nil {
		return fmt.Errorf("dynamostore: delete failed: %w", err)
	}
	return nil
}

// Add usa "ADD attr :delta"; o DynamoDB cria o item e trata o atributo
// ausente como zero.
func (s *dynamoStore[T]) Add(ctx context.Context, hashKey, sortKey any, attribute string, delta int64) (*T, error) {
	update := expression.Add(expression.Name(attribute), expression.Value(delta))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, fmt.Errorf("dynamostore: build update failed: %w", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.cfg.TableName),
		Key:                       s.key(hashKey, sortKey),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("dynamostore: update failed: %w", err)
	}

	return unmarshal[T](out.Attributes)
}

func (s *dynamoStore[T]) key(hashKey, sortKey any) map[string]types.AttributeValue {
	key := map[string]types.AttributeValue{
		s.cfg.HashKey: attr(hashKey),
	}
	if s.cfg.SortKey != "" && sortKey != nil {
		key[s.cfg.SortKey] = attr(sortKey)
	}
	return key
}

func unmarshal[T any](item map[string]types.AttributeValue) (*T, error) {
	var t T
	if err := attributevalue.UnmarshalMap(item, &t); err != nil {
		return nil, fmt.Errorf("dynamostore: unmarshal failed: %w", err)
	}
	return &t, nil
}

// attr converte qualquer valor para types.AttributeValue
func attr(v any) types.AttributeValue {
	if v == nil {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	return av
}
