// Package finalize implementa a máquina de estados de resultado de partida:
// OPEN -> FINALIZED via Finalize e FINALIZED -> OPEN via Reverse.
package finalize

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/prediction-league/internal/league"
	"github.com/radieske/prediction-league/internal/league/repo"
	"github.com/radieske/prediction-league/internal/league/scoring"
	"github.com/radieske/prediction-league/internal/shared/metrics"
	"github.com/radieske/prediction-league/pkg/contracts/events"
)

// Publisher recebe os eventos de transição depois do commit
type Publisher interface {
	PublishMatchEvent(ctx context.Context, e events.MatchEvent) error
}

// Invalidator descarta o leaderboard em cache de um torneio
type Invalidator interface {
	Invalidate(ctx context.Context, tournamentID string) error
}

// Service coordena as transições de resultado
type Service struct {
	store   repo.Store
	pub     Publisher
	cache   Invalidator
	log     *zap.Logger
	metrics *metrics.League
}

// NewService cria o serviço; pub, cache e m podem ser nil
func NewService(store repo.Store, pub Publisher, cache Invalidator, log *zap.Logger, m *metrics.League) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, pub: pub, cache: cache, log: log, metrics: m}
}

// Finalize grava o placar oficial e recalcula os pontos de todos os palpites da partida
// numa única transação. Finalizar uma partida já finalizada é conflito.
func (s *Service) Finalize(ctx context.Context, matchID string, result league.Score) (league.Match, error) {
	if err := league.CheckID("match", matchID); err != nil {
		return league.Match{}, err
	}
	if err := league.ValidateScore(result); err != nil {
		return league.Match{}, err
	}

	var (
		m      league.Match
		scored int
	)
	err := s.store.WithTx(ctx, func(tx repo.Tx) error {
		var err error
		m, err = tx.LockMatch(ctx, matchID, repo.LockExclusive)
		if err != nil {
			return err
		}
		if m.Finalized {
			return fmt.Errorf("match %s already finalized: %w", matchID, league.ErrConflict)
		}
		if err := tx.SetResult(ctx, matchID, &result); err != nil {
			return err
		}

		preds, err := tx.PredictionsForMatch(ctx, matchID)
		if err != nil {
			return err
		}
		for _, p := range preds {
			if err := tx.SetPoints(ctx, p.ID, scoring.Points(result, p.Predicted)); err != nil {
				return fmt.Errorf("score prediction %d: %w", p.ID, err)
			}
		}
		scored = len(preds)
		return nil
	})
	if err != nil {
		s.metrics.Transition("finalize", outcomeOf(err))
		return league.Match{}, err
	}

	m.Result = &result
	m.Finalized = true
	s.metrics.Transition("finalize", "ok")
	s.metrics.Rescored(scored)
	s.log.Info("match finalized",
		zap.String("match_id", m.ID),
		zap.String("tournament_id", m.TournamentID),
		zap.Int("home_goals", result.Home),
		zap.Int("away_goals", result.Away),
		zap.Int("predictions_scored", scored),
	)

	home, away := result.Home, result.Away
	s.afterCommit(ctx, m, events.MatchEvent{
		Type:              events.TypeMatchFinalized,
		MatchID:           m.ID,
		TournamentID:      m.TournamentID,
		HomeTeam:          m.HomeTeam,
		AwayTeam:          m.AwayTeam,
		HomeGoals:         &home,
		AwayGoals:         &away,
		PredictionsScored: scored,
	})
	return m, nil
}

// Reverse reabre uma partida finalizada: limpa o placar e os pontos dos palpites.
// Reverter uma partida aberta não altera nada.
func (s *Service) Reverse(ctx context.Context, matchID string) (league.Match, error) {
	if err := league.CheckID("match", matchID); err != nil {
		return league.Match{}, err
	}

	var (
		m       league.Match
		changed bool
		cleared int64
	)
	err := s.store.WithTx(ctx, func(tx repo.Tx) error {
		var err error
		m, err = tx.LockMatch(ctx, matchID, repo.LockExclusive)
		if err != nil {
			return err
		}
		if !m.Finalized {
			return nil
		}
		if err := tx.SetResult(ctx, matchID, nil); err != nil {
			return err
		}
		cleared, err = tx.ClearPoints(ctx, matchID)
		if err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		s.metrics.Transition("reverse", outcomeOf(err))
		return league.Match{}, err
	}
	if !changed {
		s.metrics.Transition("reverse", "noop")
		return m, nil
	}

	m.Result = nil
	m.Finalized = false
	s.metrics.Transition("reverse", "ok")
	s.log.Info("match reverted",
		zap.String("match_id", m.ID),
		zap.String("tournament_id", m.TournamentID),
		zap.Int64("predictions_cleared", cleared),
	)

	s.afterCommit(ctx, m, events.MatchEvent{
		Type:               events.TypeMatchReverted,
		MatchID:            m.ID,
		TournamentID:       m.TournamentID,
		HomeTeam:           m.HomeTeam,
		AwayTeam:           m.AwayTeam,
		PredictionsCleared: int(cleared),
	})
	return m, nil
}

// afterCommit é best-effort: a transição já está gravada e não é desfeita por falha aqui
func (s *Service) afterCommit(ctx context.Context, m league.Match, e events.MatchEvent) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, m.TournamentID); err != nil {
			s.log.Warn("leaderboard cache invalidation failed", zap.String("tournament_id", m.TournamentID), zap.Error(err))
		}
	}
	if s.pub != nil {
		if err := s.pub.PublishMatchEvent(ctx, e); err != nil {
			s.log.Warn("publish match event failed", zap.String("match_id", m.ID), zap.String("type", e.Type), zap.Error(err))
		}
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, league.ErrNotFound):
		return "not_found"
	case errors.Is(err, league.ErrConflict):
		return "conflict"
	case errors.Is(err, league.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
