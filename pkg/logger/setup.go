package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/raywall/fast-sam-local/pkg/config"
	"github.com/rs/zerolog"
)

// Configure inicializa o logger global baseando-se na configuração do emulador.
func Configure(cfg config.LoggingConf) zerolog.Logger {
	return ConfigureWriter(cfg, os.Stdout)
}

// ConfigureWriter é Configure com destino explícito.
func ConfigureWriter(cfg config.LoggingConf, out io.Writer) zerolog.Logger {
	// Define o nível de log (default: info)
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// JSON por padrão; console "bonito" para uso local se solicitado
	output := out
	if !cfg.Enabled {
		output = io.Discard
	} else if cfg.Format == "console" {
		// O componente (ApiGateway, EventBridge, Invoker...) vem logo após o nível
		output = zerolog.ConsoleWriter{
			Out:           out,
			TimeFormat:    time.RFC3339,
			PartsOrder:    []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, ComponentField, zerolog.MessageFieldName},
			FieldsExclude: []string{ComponentField},
		}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Logger()
}

// ComponentField é o campo que identifica a origem do log.
const ComponentField = "component"

// Component deriva um logger marcado com o nome do componente.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str(ComponentField, name).Logger()
}
