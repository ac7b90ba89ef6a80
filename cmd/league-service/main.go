package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/prediction-league/internal/league/finalize"
	httpapi "github.com/radieske/prediction-league/internal/league/http"
	"github.com/radieske/prediction-league/internal/league/identity"
	"github.com/radieske/prediction-league/internal/league/leaderboard"
	"github.com/radieske/prediction-league/internal/league/lockpolicy"
	"github.com/radieske/prediction-league/internal/league/prediction"
	"github.com/radieske/prediction-league/internal/league/producer"
	"github.com/radieske/prediction-league/internal/league/repo"
	"github.com/radieske/prediction-league/internal/league/ws"
	"github.com/radieske/prediction-league/internal/shared/cache"
	"github.com/radieske/prediction-league/internal/shared/config"
	"github.com/radieske/prediction-league/internal/shared/kafka"
	"github.com/radieske/prediction-league/internal/shared/logger"
	"github.com/radieske/prediction-league/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()
	log.Info("starting service", zap.String("store", cfg.StoreDriver))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// banco (postgres em produção, sqlite para dev/embarcado)
	store, err := repo.Open(ctx, cfg.StoreDriver, cfg.PostgresDSN, cfg.SQLitePath)
	if err != nil {
		log.Fatal("store open", zap.Error(err))
	}
	defer store.Close()
	log.Info("store ready", zap.String("dialect", store.Dialect()))

	// Redis é opcional: sem ele não há cache de leaderboard nem feed ao vivo
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer redisClient.Close()
		log.Info("redis connected")
	}

	// Kafka também é opcional; sem brokers os eventos de ciclo de vida não são publicados
	var (
		matchPub finalize.Publisher
		predPub  prediction.Publisher
	)
	if cfg.KafkaBrokers != "" {
		mw := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchEvents)
		pw := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicPredictionEvents)
		defer mw.Close()
		defer pw.Close()
		kp := producer.NewKafkaPublisher(mw, pw)
		matchPub, predPub = kp, kp
		log.Info("kafka writers ready",
			zap.String("match_topic", cfg.TopicMatchEvents),
			zap.String("prediction_topic", cfg.TopicPredictionEvents))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewLeague(reg)

	var lbCache leaderboard.Cache
	if redisClient != nil {
		lbCache = leaderboard.NewRedisCache(redisClient, cfg.LeaderboardCacheTTL)
	}
	board := leaderboard.NewAggregator(store, lbCache, log, m)

	accounts, err := identity.NewService(store, identity.Config{
		Secret:      cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		AdminEmails: cfg.AdminEmails,
	})
	if err != nil {
		log.Fatal("identity init", zap.Error(err))
	}

	api := &httpapi.API{
		Accounts:    accounts,
		Catalog:     store,
		Results:     finalize.NewService(store, matchPub, board, log, m),
		Predictions: prediction.NewService(store, lockpolicy.New(cfg.PredictionLockWindow), predPub, log, m),
		Leaderboard: board,
		Limiter:     httpapi.NewUserLimiter(cfg.PredictionRatePerMin, cfg.PredictionRateBurst),
		Log:         log,
	}

	// feed ao vivo: Redis Pub/Sub (alimentado pelo results-fanout-worker) -> WebSocket
	if redisClient != nil {
		hub := ws.NewHub(ws.AllowOrigins(cfg.WebSocketAllowOrigins), log)
		ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub, log)
		api.Live = hub
	}

	// healthz: valida dependências críticas
	health := func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, reg, health, func(err error) {
		log.Error("metrics server failed", zap.Error(err))
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("api listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("league-service stopped")
}
