package dyndb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// MockStore é um mock da interface Store[T] com campos de função (`GetFn`,
// `AddFn`, etc.) para simular o DynamoDB nos testes.
type MockStore[T any] struct {
	GetFn    func(ctx context.Context, hashKey, sortKey any) (*T, error)
	PutFn    func(ctx context.Context, item T) error
	DeleteFn func(ctx context.Context, hashKey, sortKey any) error
	AddFn    func(ctx context.Context, hashKey, sortKey any, attribute string, delta int64) (*T, error)
}

func (m *MockStore[T]) Get(ctx context.Context, hashKey, sortKey any) (*T, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, hashKey, sortKey)
	}
	return nil, ErrNotFound
}

func (m *MockStore[T]) Put(ctx context.Context, item T) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, item)
	}
	return nil
}

func (m *MockStore[T]) Delete(ctx context.Context, hashKey, sortKey any) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, hashKey, sortKey)
	}
	return nil
}

func (m *MockStore[T]) Add(ctx context.Context, hashKey, sortKey any, attribute string, delta int64) (*T, error) {
	if m.AddFn != nil {
		return m.AddFn(ctx, hashKey, sortKey, attribute, delta)
	}
	return nil, ErrNotFound
}

// MockDynamoClient é um mock para a interface DynamoDBClient de baixo nível.
type MockDynamoClient struct {
	GetItemFn    func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItemFn    func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItemFn func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItemFn func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

func (m *MockDynamoClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.GetItemFn != nil {
		return m.GetItemFn(ctx, params, optFns...)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *MockDynamoClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if m.PutItemFn != nil {
		return m.PutItemFn(ctx, params, optFns...)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *MockDynamoClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if m.UpdateItemFn != nil {
		return m.UpdateItemFn(ctx, params, optFns...)
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (m *MockDynamoClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if m.DeleteItemFn != nil {
		return m.DeleteItemFn(ctx, params, optFns...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}
