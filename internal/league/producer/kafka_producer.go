package producer

import (
	"context"
	"time"

	skafka "github.com/radieske/prediction-league/internal/shared/kafka"
	"github.com/radieske/prediction-league/pkg/contracts/events"
)

// KafkaPublisher publica os eventos da liga; a chave é o match_id,
// então eventos da mesma partida mantêm a ordem.
type KafkaPublisher struct {
	Matches     *skafka.Writer
	Predictions *skafka.Writer
}

func NewKafkaPublisher(matches, predictions *skafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Matches: matches, Predictions: predictions}
}

func (p *KafkaPublisher) PublishMatchEvent(ctx context.Context, e events.MatchEvent) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now().UTC()
	}
	return skafka.WriteJSON(ctx, p.Matches, e.MatchID, e)
}

func (p *KafkaPublisher) PublishPredictionSubmitted(ctx context.Context, e events.PredictionSubmitted) error {
	if e.TsUnixMs == 0 {
		e.TsUnixMs = time.Now().UnixMilli()
	}
	return skafka.WriteJSON(ctx, p.Predictions, e.MatchID, e)
}
