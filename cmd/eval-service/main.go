package main

import (
	"fmt"
	"os"

	"github.com/abenov/tenderhub-eval/internal/config"
	"github.com/abenov/tenderhub-eval/internal/db"
	httphandler "github.com/abenov/tenderhub-eval/internal/http"
	"github.com/abenov/tenderhub-eval/internal/logger"
	"github.com/abenov/tenderhub-eval/internal/repository"
	"github.com/abenov/tenderhub-eval/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	boqRepo := repository.NewBoqRepository(database)
	bidRepo := repository.NewBidRepository(database)
	sheetRepo := repository.NewSheetRepository(database)

	sheetService := service.NewSheetService(boqRepo, bidRepo, sheetRepo, cfg)

	handler := httphandler.NewHandler(sheetService, log)
	router := httphandler.NewRouter(handler, log, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting eval service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
