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
package envloader

import (
	"fmt"
	"reflect"
)

// InvalidConfigError indica que Load não recebeu um ponteiro para struct.
type InvalidConfigError struct {
	Value reflect.Type
}

func (e *InvalidConfigError) Error() string {
	if e.Value == nil {
		return "envloader: config must be a pointer to struct, got nil"
	}
	if e.Value.Kind() != reflect.Ptr {
		return fmt.Sprintf("envloader: config must be a pointer to struct, got %s", e.Value.Kind())
	}
	return fmt.Sprintf("envloader: config must be a pointer to struct, got pointer to %s", e.Value.Elem().Kind())
}

// FieldError associa uma falha de conversão ao campo e à variável de origem.
// Valores vindos de envDefault também são reportados aqui, com EnvVar preenchido
// e Default = true.
type FieldError struct {
	FieldName string
	EnvVar    string
	Value     string
	Default   bool
	Err       error
}

func (e *FieldError) Error() string {
	origin := "env " + e.EnvVar
	if e.Default {
		origin = "envDefault of " + e.EnvVar
	}
	return fmt.Sprintf("envloader: field %s from %s=%q: %v", e.FieldName, origin, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError é retornado para tipos sem conversão conhecida
// (map, interface, slices que não sejam de string).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("envloader: unsupported type %s", e.Type)
}
