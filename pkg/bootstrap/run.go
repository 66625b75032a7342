package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/fast-sam-local/pkg/config"
	"github.com/raywall/fast-sam-local/pkg/engine"
	"github.com/raywall/fast-sam-local/pkg/eventbus"
	"github.com/raywall/fast-sam-local/pkg/invoke"
	"github.com/raywall/fast-sam-local/pkg/logger"
	"github.com/raywall/fast-sam-local/pkg/observability"
	"github.com/raywall/fast-sam-local/pkg/secrets"
	"github.com/raywall/fast-sam-local/pkg/template"
)

// DefaultRegion é usada quando AWS_REGION não está definida.
const DefaultRegion = "us-east-1"

// CLI são as flags aceitas pelo emulador. Valores informados sobrescrevem
// o arquivo de configuração e o ambiente.
type CLI struct {
	Template       string `short:"t" help:"Template SAM (caminho, file://, s3:// ou dynamodb://)"`
	Env            string `short:"e" name:"env" help:"Arquivo JSON de parâmetros ({\"Parameters\": {...}})"`
	Config         string `short:"c" help:"Arquivo YAML de configuração do emulador" env:"SAM_LOCAL_CONFIG"`
	Port           int    `short:"p" help:"Porta HTTP"`
	APIPrefix      string `name:"api-prefix" help:"Prefixo das rotas da API"`
	RemoteEndpoint string `name:"remote-endpoint" help:"Runtime Interface Emulator que executa os handlers"`
}

// Dependencies permite trocar as partes com efeito colateral (útil em testes).
type Dependencies struct {
	// Registry contém os handlers compilados no binário.
	Registry *invoke.Registry
	// ServerStarter bloqueia servindo o engine até o ctx terminar.
	ServerStarter func(ctx context.Context, eng *engine.Engine) error
	// SQSClient cria o cliente da ponte SQS.
	SQSClient func(ctx context.Context) (eventbus.SQSClient, error)
	// OnReady, se definido, recebe o engine pronto antes do servidor subir.
	OnReady func(eng *engine.Engine)
}

func (d *Dependencies) defaults() {
	if d.Registry == nil {
		d.Registry = invoke.NewRegistry()
	}
	if d.ServerStarter == nil {
		d.ServerStarter = func(ctx context.Context, eng *engine.Engine) error { return eng.Serve(ctx) }
	}
	if d.SQSClient == nil {
		d.SQSClient = func(ctx context.Context) (eventbus.SQSClient, error) {
			cfg, err := secrets.GetAWSConfig(ctx, os.Getenv("AWS_REGION"))
			if err != nil {
				return nil, err
			}
			return sqs.NewFromConfig(cfg), nil
		}
	}
}

// Run interpreta os argumentos, carrega configuração e template e sobe o emulador.
func Run(ctx context.Context, args []string, deps Dependencies) error {
	deps.defaults()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("fast-sam-local"),
		kong.Description("Emulador local de templates SAM: API Gateway, EventBridge e invocação direta."),
	)
	if err != nil {
		return err
	}
	if _, err := parser.Parse(args); err != nil {
		return err
	}

	// 1. Configuração: ambiente < YAML < flags
	cfg, err := config.Load(ctx, cli.Config)
	if err != nil {
		return err
	}
	applyFlags(cfg, cli)

	if err := config.NewValidator().Validate(cfg); err != nil {
		return err
	}

	// 2. Logger
	base := logger.Configure(cfg.Logging)
	log := logger.Component(base, "Bootstrap")

	if os.Getenv("AWS_REGION") == "" {
		_ = os.Setenv("AWS_REGION", DefaultRegion)
	}

	// 3. Parâmetros exportados para o ambiente dos handlers
	var params map[string]string
	if cfg.EnvFile != "" {
		params, err = config.LoadParameters(ctx, cfg.EnvFile, nil)
		if err != nil {
			return err
		}
		if err := config.ExportEnvironment(params); err != nil {
			return err
		}
		log.Info().Int("parameters", len(params)).Str("file", cfg.EnvFile).Msg("Parâmetros carregados")
	}

	// 4. Template
	tpl, err := template.NewLoader(params).Load(ctx, cfg.Template)
	if err != nil {
		return err
	}

	// 5. Métricas
	provider, err := observability.SetupMetrics(cfg.Metrics, base)
	if err != nil {
		return err
	}
	defer provider.Close()

	// 6. Origem dos handlers
	var loader invoke.Loader = deps.Registry
	if cfg.Remote.Endpoint != "" {
		loader = invoke.NewRemoteLoader(cfg.Remote.Endpoint, cfg.Remote.GetTimeout())
		log.Info().Str("endpoint", cfg.Remote.Endpoint).Msg("Handlers executados remotamente")
	}

	eng, err := engine.New(cfg, tpl, loader,
		engine.WithLogger(base),
		engine.WithMetrics(provider),
	)
	if err != nil {
		return err
	}

	// 7. Ponte SQS -> barramento (opcional)
	if cfg.EventBus.SQSQueueURL != "" {
		client, err := deps.SQSClient(ctx)
		if err != nil {
			return fmt.Errorf("falha ao criar cliente SQS: %w", err)
		}
		bridge := eventbus.NewSQSBridge(client, cfg.EventBus.SQSQueueURL, eng.Bus(), base)
		go bridge.Start(ctx)
	}

	if deps.OnReady != nil {
		deps.OnReady(eng)
	}

	// 8. Servidor
	return deps.ServerStarter(ctx, eng)
}

func applyFlags(cfg *config.EmulatorConfig, cli CLI) {
	if cli.Template != "" {
		cfg.Template = cli.Template
	}
	if cli.Env != "" {
		cfg.EnvFile = cli.Env
	}
	if cli.Port != 0 {
		cfg.Server.Port = cli.Port
	}
	if cli.APIPrefix != "" {
		cfg.Server.APIPrefix = cli.APIPrefix
	}
	if cli.RemoteEndpoint != "" {
		cfg.Remote.Endpoint = cli.RemoteEndpoint
	}
}
