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
// Package envloader fornece um utilitário simples para carregar variáveis de
// ambiente diretamente para campos de uma struct Go, incluindo suporte
// para tags de ambiente (`env`) e valores padrão (`envDefault`).
//
// Visão Geral:
// O `envloader` simplifica a gestão de configurações em aplicações Go.
// Ele utiliza reflection para inspecionar a struct de configuração e mapear
// automaticamente variáveis de ambiente para os campos tipados. Suporta tipos
// básicos como string, int, uint, bool e float, além de structs aninhadas
// (incluindo ponteiros para structs).
//
// Funcionalidades Principais:
// - Mapeamento por Tag: Usa a tag `env:"VAR_NAME"` para encontrar a variável.
// - Valores Padrão: Usa a tag `envDefault:"value"` se a variável não estiver definida.
// - Suporte a Aninhamento: Processa structs aninhadas e ponteiros para structs.
// - Tipos Extras: time.Duration ("1m30s") e []string separado por vírgulas.
// - Tratamento de Erros Tipados: Retorna erros específicos para configurações inválidas ou conversões de tipo.
//
// Exemplos de Uso:
//
// Configuração do emulador com valores padrão e struct aninhada:
//
//	type ServerConf struct {
//		Port            int           `env:"PORT" envDefault:"3001"`
//		CORS            bool          `env:"CORS_ENABLED" envDefault:"true"`
//		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
//	}
//
//	type EmulatorConfig struct {
//		Template string `env:"SAM_TEMPLATE" envDefault:"template.yaml"`
//		Server   ServerConf
//		Sources  []string `env:"EVENT_SOURCES"` // "a,b,c"
//	}
//
//	var cfg EmulatorConfig
//	if err := envloader.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Configuração:
// O pacote requer que a função `Load` receba um ponteiro para a struct de configuração.
// As variáveis de ambiente devem estar definidas no sistema operacional antes da execução de `Load`.
package envloader