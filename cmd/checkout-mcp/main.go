package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	checkout "github.com/vitwit/checkout"
	"github.com/vitwit/checkout/config"
	"github.com/vitwit/checkout/logger"
	"github.com/vitwit/checkout/mcpserver"
)

func main() {
	// Best effort: a missing .env file is fine, the environment may
	// already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "checkout-mcp: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewZapLogger(cfg.LogLevel)

	c := checkout.New(cfg, checkout.WithLogger(log))
	srv := mcpserver.New(c, log)

	log.Info("checkout MCP server starting", map[string]any{
		"wallet":  cfg.AgentWalletAddress,
		"apiBase": cfg.CrossmintAPIBase,
	})

	if err := srv.ServeStdio(); err != nil {
		fmt.Fprintf(os.Stderr, "checkout-mcp: %v\n", err)
		os.Exit(1)
	}
}
