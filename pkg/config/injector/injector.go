package injector

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/raywall/fast-sam-local/pkg/secrets"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.API_KEY}, ${ssm./app/config}, ${secret.db_pass}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

// Fetcher busca o valor de uma chave em uma origem (env, ssm, secret).
type Fetcher func(ctx context.Context, sourceType, key string) (string, error)

type Injector struct {
	fetch Fetcher
}

// New cria um Injector que consulta variáveis de ambiente, SSM e Secrets Manager.
func New() *Injector {
	return &Injector{fetch: fetchValue}
}

// NewWithFetcher permite trocar a origem dos valores (útil em testes).
func NewWithFetcher(f Fetcher) *Injector {
	return &Injector{fetch: f}
}

// Inject percorre a struct apontada por target interpolando strings "${...}".
func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.injectRecursive(ctx, v.Elem())
}

// ResolveMap devolve uma cópia de values com todas as interpolações resolvidas.
func (i *Injector) ResolveMap(ctx context.Context, values map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for k, v := range values {
		resolved, err := i.Interpolate(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("falha ao resolver '%s': %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

func (i *Injector) injectRecursive(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		for k := 0; k < v.NumField(); k++ {
			if err := i.injectRecursive(ctx, v.Field(k)); err != nil {
				return err
			}
		}

	case reflect.String:
		if !v.CanSet() {
			return nil
		}
		newValue, err := i.Interpolate(ctx, v.String())
		if err != nil {
			return err
		}
		v.SetString(newValue)

	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String && !v.IsNil() {
			return i.injectMap(ctx, v)
		}

	case reflect.Ptr:
		if !v.IsNil() {
			return i.injectRecursive(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.injectRecursive(ctx, v.Index(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// injectMap lida com mapas dinâmicos (map[string]string e map[string]interface{})
func (i *Injector) injectMap(ctx context.Context, v reflect.Value) error {
	updates := make(map[string]reflect.Value)

	iter := v.MapRange()
	for iter.Next() {
		elem := iter.Value()
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		if !elem.IsValid() {
			continue
		}

		switch elem.Kind() {
		case reflect.String:
			newVal, err := i.Interpolate(ctx, elem.String())
			if err != nil {
				return err
			}
			updates[iter.Key().String()] = reflect.ValueOf(newVal).Convert(v.Type().Elem())
		case reflect.Map:
			if elem.Type().Key().Kind() == reflect.String && !elem.IsNil() {
				if err := i.injectMap(ctx, elem); err != nil {
					return err
				}
			}
		}
	}

	for k, val := range updates {
		v.SetMapIndex(reflect.ValueOf(k), val)
	}
	return nil
}

// Interpolate realiza a substituição baseada em Regex
func (i *Injector) Interpolate(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var err error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := pattern.FindStringSubmatch(match)

		val, fetchErr := i.fetch(ctx, parts[1], parts[2])
		if fetchErr != nil {
			err = fetchErr
			return match
		}
		return val
	})

	return result, err
}

// fetchValue centraliza a busca de dados
func fetchValue(ctx context.Context, sourceType, key string) (string, error) {
	region := os.Getenv("AWS_REGION")

	switch sourceType {
	case "env":
		return os.Getenv(key), nil
	case "ssm":
		return secrets.Parameter(ctx, region, key)
	case "secret":
		return secrets.Secret(ctx, region, key)
	}
	return "", fmt.Errorf("origem desconhecida: %s", sourceType)
}
