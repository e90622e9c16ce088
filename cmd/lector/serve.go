package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/kadirpekel/lector/pkg/chat"
	"github.com/kadirpekel/lector/pkg/observability"
	"github.com/kadirpekel/lector/pkg/server"
)

// ServeCmd starts the HTTP chat server.
type ServeCmd struct {
	Host string `help:"Host to bind to."`
	Port int    `help:"Port to listen on."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	if _, err := observability.InitGlobalTracer(ctx, cfg.Observability.Tracer); err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	metrics, err := observability.InitMetrics(ctx, cfg.Observability.Metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	observability.SetGlobalMetrics(metrics)

	comps, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	defer comps.Close()

	knowledge, err := knowledgeEngine(ctx, cfg, comps)
	if err != nil {
		return err
	}
	uploads := uploadBuilder(cfg, comps)

	factory := func(id string) (*chat.Session, error) {
		return chat.NewSession(id, comps.llm, knowledge, uploads, cfg.Session, nil)
	}

	srv := server.New(cfg.Server, factory, slog.Default())

	fmt.Printf("lector server ready on http://%s\n", srv.Addr())
	fmt.Println("Press Ctrl+C to stop")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
