// Package dyndb fornece uma abstração genérica e fortemente tipada sobre o
// AWS DynamoDB Go SDK (v2), usada pelos handlers de exemplo do emulador.
//
// Visão Geral:
// O pacote oferece a interface `Store[T]` com operações por chave primária,
// sem lidar diretamente com os tipos de baixo nível do SDK (AttributeValue,
// expressões de update, etc.).
//
// Funcionalidades Principais:
// - CRUD Tipado: `Get`, `Put` e `Delete` usando tipos Go nativos.
// - Contador Atômico: `Add` incrementa (ou decrementa) um atributo numérico
//   com UpdateItem, criando o item se ele não existir.
// - Mocks Integrados: `MockStore` e `MockDynamoClient` para testes unitários.
//
// Exemplo de contador:
//
//	type Counter struct {
//		ID    string `dynamodbav:"id"`
//		Count int64  `dynamodbav:"count"`
//	}
//
//	store := dyndb.New(client, dyndb.TableConfig[Counter]{TableName: "counter", HashKey: "id"})
//
//	current, err := store.Add(ctx, "Count", nil, "count", -1)
//
// Configuração:
// Sem TableName, o Store lê a configuração da tabela do ambiente
// (DYNAMODB_TABLE_NAME, DYNAMODB_HASH_KEY, DYNAMODB_SORT_KEY).
package dyndb
