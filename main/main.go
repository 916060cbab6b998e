// main.go
//
// Copyright (C) 2025 Tom Verbeek
//
// Server entrypoint for the goboggle module

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	boggle "github.com/tmverbeek/goboggle"
)

func main() {
	cfg := boggle.LoadConfig()

	// Flags override the environment
	port := flag.String("port", cfg.Port, "Port to listen on")
	dictDir := flag.String("dict-dir", cfg.DictionaryDir,
		"Directory with *.dic dictionary files")
	diceDir := flag.String("dice-dir", cfg.DiceConfigDir,
		"Directory with *.dice configuration files")
	flag.Parse()
	cfg.Port, cfg.DictionaryDir, cfg.DiceConfigDir = *port, *dictDir, *diceDir

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := boggle.OpenStore(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer store.Close()
	// sets up the schema and truncates all sessions on every restart
	if err := store.InitSchema(ctx); err != nil {
		logger.Fatal("schema init failed", zap.Error(err))
	}

	dice, err := boggle.LoadDiceConfigs(cfg.DiceConfigDir)
	if err != nil {
		logger.Fatal("dice configs unreadable", zap.Error(err))
	}
	if _, ok := dice.Get(cfg.DefaultDiceConfig); !ok {
		logger.Warn("default dice config not found",
			zap.String("name", cfg.DefaultDiceConfig),
			zap.Strings("available", dice.Names()))
	}
	dicts := boggle.NewDictionaryCache(cfg.DictionaryDir, 8)

	pool := boggle.NewWorkerPool(store, dice, dicts, logger, 64)
	var dispatcher boggle.Dispatcher = pool
	if cfg.DisableAsyncScoring {
		dispatcher = boggle.SyncDispatcher{Pool: pool}
	} else {
		go func() {
			if err := pool.Run(ctx, cfg.ScoringWorkers); err != nil &&
				!errors.Is(err, context.Canceled) {
				logger.Error("worker pool stopped", zap.Error(err))
			}
		}()
	}

	vault := boggle.NewTokenVault()
	srv := boggle.NewServer(cfg, store, vault, dice, dicts, dispatcher, logger)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("port", cfg.Port))
	if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
