package api

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"WorldCup/api/config"
	"WorldCup/api/controllers"
)

var server = controllers.Server{}

// Run loads configuration, wires the server and blocks until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := server.Initialize(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + strings.TrimSpace(cfg.Port)
	return server.Run(ctx, addr)
}
