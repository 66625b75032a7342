package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

// Serve escuta na porta configurada até o ctx ser cancelado; então encerra o
// servidor e espera o barramento drenar.
func (e *Engine) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", e.Config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           e.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.Logger.Info().Str("addr", addr).Str("api_prefix", e.Config.Server.APIPrefix).Msg("Servidor HTTP ouvindo")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("falha no servidor HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	e.Logger.Info().Msg("Encerrando servidor")
	timeout := e.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("falha ao encerrar servidor: %w", err)
	}
	return e.Shutdown(shutdownCtx)
}
