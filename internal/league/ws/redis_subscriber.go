package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/prediction-league/pkg/contracts/events"
)

// StartRedisSubscriber escuta o canal Pub/Sub alimentado pelo results-fanout-worker
// e repassa cada evento de partida para o Hub. Encerra quando ctx é cancelado.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := Dispatch(hub, []byte(msg.Payload)); err != nil {
					log.Warn("ws subscriber unmarshal error", zap.String("channel", channel), zap.Error(err))
				}
			}
		}
	}()
}

// Dispatch decodifica um MatchEvent publicado no canal e faz o broadcast
func Dispatch(hub *Hub, payload []byte) error {
	var e events.MatchEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return err
	}
	hub.Broadcast(e)
	return nil
}
