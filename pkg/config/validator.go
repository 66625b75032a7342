package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *EmulatorConfig) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *EmulatorConfig) error {
	if strings.HasSuffix(cfg.Server.APIPrefix, "/") {
		return fmt.Errorf("api_prefix não deve terminar com '/': '%s'", cfg.Server.APIPrefix)
	}

	if cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout não pode ser negativo: %s", cfg.Server.ShutdownTimeout)
	}

	if cfg.EventBus.SQSQueueURL != "" && cfg.Remote.Endpoint == cfg.EventBus.SQSQueueURL {
		return fmt.Errorf("remote.endpoint e event_bus.sqs_queue_url apontam para o mesmo endereço: '%s'", cfg.Remote.Endpoint)
	}

	if cfg.Remote.Endpoint != "" && cfg.Remote.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Remote.Timeout); err != nil {
			return fmt.Errorf("remote.timeout inválido: '%s'", cfg.Remote.Timeout)
		}
	}

	return nil
}
