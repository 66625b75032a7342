package config

import "time"

// EmulatorConfig representa a configuração do emulador local.
// Precedência: envDefault/variáveis de ambiente < arquivo YAML < flags da CLI.
type EmulatorConfig struct {
	Template string       `yaml:"template" env:"SAM_TEMPLATE" envDefault:"template.yaml" validate:"required"`
	EnvFile  string       `yaml:"env_file" env:"SAM_ENV_FILE"`
	Server   ServerConf   `yaml:"server"`
	Logging  LoggingConf  `yaml:"logging"`
	Metrics  MetricsConf  `yaml:"metrics"`
	EventBus EventBusConf `yaml:"event_bus"`
	Remote   RemoteConf   `yaml:"remote"`
}

// ServerConf contém as configurações do gateway HTTP emulado.
type ServerConf struct {
	Port      int    `yaml:"port" env:"PORT" envDefault:"3001" validate:"gte=1,lte=65535"`
	APIPrefix string `yaml:"api_prefix" env:"API_PREFIX" envDefault:"/api" validate:"required,startswith=/"`
	CORS      bool   `yaml:"cors" env:"CORS_ENABLED" envDefault:"true"`
	// ShutdownTimeout limita a espera por requisições e entregas pendentes.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled" env:"LOG_ENABLED" envDefault:"true"`
	Level   string `yaml:"level" env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format  string `yaml:"format" env:"LOG_FORMAT" envDefault:"console" validate:"oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace" env:"DD_NAMESPACE" envDefault:"sam_local."`
}

// EventBusConf habilita a ponte SQS -> barramento de eventos.
type EventBusConf struct {
	SQSQueueURL string `yaml:"sqs_queue_url" env:"EVENT_BUS_SQS_QUEUE" validate:"omitempty,url"`
}

// RemoteConf aponta para um Runtime Interface Emulator que executa os handlers.
type RemoteConf struct {
	Endpoint string `yaml:"endpoint" env:"REMOTE_INVOKE_ENDPOINT" validate:"omitempty,url"`
	Timeout  string `yaml:"timeout" env:"REMOTE_INVOKE_TIMEOUT" envDefault:"30s"`
}

// GetTimeout converte o timeout configurado, com fallback de 30s.
func (r RemoteConf) GetTimeout() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
