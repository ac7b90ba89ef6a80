package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/prediction-league/internal/results-fanout/consumer"
	"github.com/radieske/prediction-league/internal/results-fanout/pubsub"
	"github.com/radieske/prediction-league/internal/shared/cache"
	"github.com/radieske/prediction-league/internal/shared/config"
	"github.com/radieske/prediction-league/internal/shared/kafka"
	"github.com/radieske/prediction-league/internal/shared/logger"
	"github.com/radieske/prediction-league/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// consumer group próprio: cada worker recebe uma partição dos eventos de partida
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicMatchEvents, "results-fanout")
	defer reader.Close()

	// Métricas Prometheus para monitoramento do fan-out
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "fanout_messages_consumed_total", Help: "mensagens consumidas"})
	forwarded := prometheus.NewCounter(prometheus.CounterOpts{Name: "fanout_messages_forwarded_total", Help: "eventos repassados ao Pub/Sub"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "fanout_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, forwarded, errorsBy)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Broadcaster: pubsub.NewRedisBroadcaster(redisClient),
		Channel:     cfg.RedisPubSubChannel,
		OnConsumed:  func() { consumed.Inc() },
		OnForwarded: func() { forwarded.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	health := func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}
	metrics.StartMetricsServer(cfg.MetricsPort, nil, health, func(err error) {
		log.Error("metrics server failed", zap.Error(err))
	})
	log.Info("metrics/health listening", zap.String("port", cfg.MetricsPort))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("results-fanout started", zap.String("topic", cfg.TopicMatchEvents), zap.String("channel", cfg.RedisPubSubChannel))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("results-fanout stopped")
}
