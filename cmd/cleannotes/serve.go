package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rifat0153/cleannotes/internal/auth"
	"github.com/rifat0153/cleannotes/internal/notes"
	"github.com/rifat0153/cleannotes/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func (app *cli) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the notes HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runServer(cmd.Context())
		},
	}
}

func (app *cli) runServer(ctx context.Context) error {
	rt, err := app.openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.config.RequireSigningSecret(); err != nil {
		return err
	}
	tokenIssuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(rt.config.SigningSecret),
		TokenTTL:      rt.config.TokenTTL,
	})
	if err != nil {
		return err
	}

	realtime := server.NewRealtimeDispatcher()
	useCases, err := notes.NewUseCases(notes.UseCasesConfig{
		Repository: realtime.ObserveRepository(rt.repository),
		Logger:     rt.logger,
	})
	if err != nil {
		return err
	}
	sessions, err := server.NewSessionRegistry(server.SessionRegistryConfig{
		UseCases:    useCases,
		IDProvider:  server.NewUUIDProvider(),
		Clock:       time.Now,
		Logger:      rt.logger,
		EventBuffer: rt.config.EventBuffer,
	})
	if err != nil {
		return err
	}
	defer sessions.CloseAll()

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenValidator: tokenIssuer,
		UseCases:       useCases,
		Sessions:       sessions,
		Realtime:       realtime,
		Logger:         rt.logger,
		RateLimitRPS:   float64(rt.config.RateLimitRPS),
		RateLimitBurst: rt.config.RateLimitBurst,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    rt.config.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("server starting",
			zap.String("address", rt.config.HTTPAddress),
			zap.String("storage", rt.config.StorageDriver),
		)
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		rt.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
