package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/prediction-league/internal/league/repo"
	"github.com/radieske/prediction-league/internal/league/seed"
	"github.com/radieske/prediction-league/internal/shared/config"
	"github.com/radieske/prediction-league/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	file := flag.String("file", cfg.SeedFile, "arquivo YAML com torneios e partidas")
	flag.Parse()

	log, err := logger.New("league-seed", cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	fixture, err := seed.Load(*file)
	if err != nil {
		log.Fatal("load seed", zap.String("file", *file), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := repo.Open(ctx, cfg.StoreDriver, cfg.PostgresDSN, cfg.SQLitePath)
	if err != nil {
		log.Fatal("store open", zap.Error(err))
	}
	defer store.Close()

	tournaments, matches, err := seed.Apply(ctx, store, fixture)
	if err != nil {
		log.Fatal("apply seed", zap.Error(err))
	}
	log.Info("seed applied",
		zap.String("file", *file),
		zap.String("dialect", store.Dialect()),
		zap.Int("tournaments", tournaments),
		zap.Int("matches", matches),
	)
}
