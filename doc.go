// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package fastsamlocal é um emulador local para templates AWS SAM.
//
// Visão Geral:
// O emulador lê um template SAM (YAML ou JSON, com as tags intrínsecas !Ref,
// !Sub, !GetAtt...) e monta, em um único processo:
// 1. Um API Gateway emulado: cada evento Api/HttpApi vira uma rota HTTP, nos
//    caminhos puro e prefixado, que converte a requisição em
//    events.APIGatewayProxyRequest e a resposta do handler de volta em HTTP.
// 2. Um EventBridge emulado: cada EventBridgeRule vira uma assinatura
//    (source E detail-type); eventos publicados são entregues de forma
//    assíncrona a todas as assinaturas que casam.
// 3. Invocação direta: POST /__FN__/{função} chama o handler com o payload cru.
// 4. Introspecção: GET /schema e GET /api/status.
//
// Sub-Pacotes Principais:
//
//   - pkg/template: leitura (arquivo, s3://, dynamodb://) e classificação do template.
//   - pkg/routing: tabelas de rotas e assinaturas, e o schema.
//   - pkg/invoke: resolução de handlers (Registry ou runtime remoto) e invocação.
//   - pkg/gateway: tradução HTTP <-> evento, montagem de rotas e middlewares.
//   - pkg/eventbus: barramento em processo, endpoint HTTP e ponte SQS.
//   - pkg/engine: orquestração e servidor HTTP.
//   - pkg/bootstrap: CLI (kong), configuração, parâmetros e métricas.
//   - dyndb, envloader: utilitários de DynamoDB e de variáveis de ambiente.
//
// Exemplo de Início Rápido:
//
// Handlers Go são registrados pelo caminho do módulo declarado no template
// (CodeUri + módulo do Handler):
//
//	package main
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		"github.com/aws/aws-lambda-go/events"
//		"github.com/raywall/fast-sam-local/pkg/bootstrap"
//		"github.com/raywall/fast-sam-local/pkg/invoke"
//	)
//
//	func main() {
//		registry := invoke.NewRegistry()
//
//		// CodeUri: src/hello/  Handler: hello.handler
//		registry.RegisterHandler("src/hello/hello", "handler",
//			func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
//				return events.APIGatewayProxyResponse{StatusCode: 200, Body: `{"hello":"world"}`}, nil
//			})
//
//		err := bootstrap.Run(context.Background(), os.Args[1:], bootstrap.Dependencies{Registry: registry})
//		if err != nil {
//			log.Fatal(err)
//		}
//	}
//
// Handlers em outras linguagens rodam atrás de um Runtime Interface Emulator:
//
//	fast-sam-local --template template.yaml --remote-endpoint http://localhost:9001
package fastsamlocal
