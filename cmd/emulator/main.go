package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/raywall/fast-sam-local/pkg/bootstrap"
	"github.com/raywall/fast-sam-local/pkg/engine"
)

// Injetável para testes
var serverStarter = func(ctx context.Context, eng *engine.Engine) error {
	return eng.Serve(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run contém a lógica principal testável. Sem handlers compilados no binário,
// as funções são executadas via --remote-endpoint.
func run(ctx context.Context, args []string) error {
	return bootstrap.Run(ctx, args, bootstrap.Dependencies{
		ServerStarter: serverStarter,
	})
}
