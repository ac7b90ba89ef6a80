package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	skafka "github.com/radieske/prediction-league/internal/shared/kafka"
	"github.com/radieske/prediction-league/pkg/contracts/events"
)

// MessageReader é o lado de leitura do kafka.Reader usado pelo Processor
type MessageReader interface {
	ReadMessage(ctx context.Context) (skafka.Message, error)
}

// Broadcaster publica o payload num canal Pub/Sub
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor consome eventos de partida do Kafka e repassa para o canal do feed ao vivo.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log         *zap.Logger
	Reader      MessageReader
	Broadcaster Broadcaster
	Channel     string

	PublishTimeout time.Duration // default 500ms
	RetryDelay     time.Duration // espera após falha de leitura; default 500ms

	OnConsumed  func()       // métricas (counter++)
	OnForwarded func()       // métricas
	OnError     func(string) // métricas por fase
}

// Run inicia o loop principal; retorna quando ctx é cancelado
func (p *Processor) Run(ctx context.Context) error {
	retry := p.RetryDelay
	if retry <= 0 {
		retry = 500 * time.Millisecond
	}
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retry):
			}
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		if err := p.Handle(ctx, m.Value); err != nil {
			p.Log.Warn("match event dropped", zap.Int64("offset", m.Offset), zap.Error(err))
			continue
		}
		if p.OnForwarded != nil {
			p.OnForwarded()
		}
	}
}

var errUnknownType = errors.New("unknown match event type")

// Handle valida um evento e publica no canal; eventos inválidos não são repassados
func (p *Processor) Handle(ctx context.Context, raw []byte) error {
	var ev events.MatchEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		p.fail("decode")
		return err
	}
	if ev.Type != events.TypeMatchFinalized && ev.Type != events.TypeMatchReverted {
		p.fail("decode")
		return errUnknownType
	}
	if ev.TournamentID == "" || ev.MatchID == "" {
		p.fail("decode")
		return errors.New("match event without ids")
	}

	b, err := json.Marshal(ev)
	if err != nil {
		p.fail("encode")
		return err
	}

	timeout := p.PublishTimeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.Broadcaster.Publish(pctx, p.Channel, b); err != nil {
		p.fail("publish")
		return err
	}
	return nil
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
