package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/xavierca1/onbongo-leads/internal/app"
	"github.com/xavierca1/onbongo-leads/internal/config"
	"github.com/xavierca1/onbongo-leads/internal/infra/logging"
)

func main() {
	godotenv.Load()

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logging.New("info", "json").WithError(err).Fatal("❌ Configuração inválida")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.EphemeralJWT {
		log.Warn("⚠️ JWT_SECRET não definido: tokens do admin expiram a cada restart")
	}
	if cfg.AdminPasswordHash == "" {
		log.Warn("⚠️ ADMIN_PASSWORD_HASH vazio: login do painel desabilitado")
	}

	application, err := app.New(cfg, log)
	if err != nil {
		logging.LogError(log, "main", "app.New", nil, err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logging.LogError(log, "main", "app.Run", cfg.Addr(), err)
		return
	}
	log.Info("👋 Até mais")
}
