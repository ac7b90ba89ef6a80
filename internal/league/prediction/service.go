// Package prediction recebe palpites dos usuários e lista os palpites de um usuário por torneio.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/prediction-league/internal/league"
	"github.com/radieske/prediction-league/internal/league/lockpolicy"
	"github.com/radieske/prediction-league/internal/league/repo"
	"github.com/radieske/prediction-league/internal/league/scoring"
	"github.com/radieske/prediction-league/internal/shared/metrics"
	"github.com/radieske/prediction-league/pkg/contracts/events"
)

// Publisher recebe o evento de palpite aceito depois do commit
type Publisher interface {
	PublishPredictionSubmitted(ctx context.Context, e events.PredictionSubmitted) error
}

// Entry é um palpite do usuário junto com os pontos, quando a partida já terminou
type Entry struct {
	MatchID   string       `json:"match_id"`
	Predicted league.Score `json:"predicted"`
	Points    *int         `json:"points"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Service implementa o fluxo de envio de palpites
type Service struct {
	store   repo.Store
	policy  lockpolicy.Policy
	pub     Publisher
	log     *zap.Logger
	metrics *metrics.League
	now     func() time.Time
}

// NewService cria o serviço; pub e m podem ser nil
func NewService(store repo.Store, policy lockpolicy.Policy, pub Publisher, log *zap.Logger, m *metrics.League) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, policy: policy, pub: pub, log: log, metrics: m, now: time.Now}
}

// WithClock troca o relógio usado pela política de trava
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit grava o palpite: uma linha nova no histórico a cada envio e um upsert no palpite vivo,
// ambos na mesma transação e com a partida travada em modo compartilhado.
func (s *Service) Submit(ctx context.Context, who league.Identity, matchID string, predicted league.Score) error {
	if err := league.CheckID("match", matchID); err != nil {
		s.metrics.Prediction("not_found")
		return err
	}
	if err := league.ValidateScore(predicted); err != nil {
		s.metrics.Prediction("invalid")
		return err
	}

	var m league.Match
	err := s.store.WithTx(ctx, func(tx repo.Tx) error {
		var err error
		m, err = tx.LockMatch(ctx, matchID, repo.LockShared)
		if err != nil {
			return err
		}
		if m.Finalized {
			return fmt.Errorf("match already finalized: %w", league.ErrConflict)
		}
		now := s.now().UTC()
		if !s.policy.Editable(m.KickoffUTC, now) {
			return fmt.Errorf("prediction window closed: %w", league.ErrConflict)
		}

		if err := tx.AppendHistory(ctx, league.HistoryEntry{
			UserID:    who.UserID,
			MatchID:   matchID,
			Predicted: predicted,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		return tx.UpsertPrediction(ctx, league.Prediction{
			UserID:    who.UserID,
			MatchID:   matchID,
			Predicted: predicted,
			UpdatedAt: now,
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, league.ErrConflict):
			s.metrics.Prediction("closed")
		case errors.Is(err, league.ErrNotFound):
			s.metrics.Prediction("not_found")
		default:
			s.metrics.Prediction("error")
		}
		return err
	}
	s.metrics.Prediction("accepted")

	if s.pub != nil {
		e := events.PredictionSubmitted{
			UserID:       who.UserID,
			MatchID:      matchID,
			TournamentID: m.TournamentID,
			HomeGoals:    predicted.Home,
			AwayGoals:    predicted.Away,
		}
		if err := s.pub.PublishPredictionSubmitted(ctx, e); err != nil {
			s.log.Warn("publish prediction event failed", zap.String("match_id", matchID), zap.Int64("user_id", who.UserID), zap.Error(err))
		}
	}
	return nil
}

// ForTournament lista os palpites vivos do usuário no torneio. Os pontos são recalculados
// contra o resultado atual e só aparecem para partidas finalizadas.
func (s *Service) ForTournament(ctx context.Context, who league.Identity, tournamentID string) ([]Entry, error) {
	if err := league.CheckID("tournament", tournamentID); err != nil {
		return nil, err
	}
	ups, err := s.store.UserPredictions(ctx, who.UserID, tournamentID)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(ups))
	for _, up := range ups {
		e := Entry{
			MatchID:   up.Prediction.MatchID,
			Predicted: up.Prediction.Predicted,
			UpdatedAt: up.Prediction.UpdatedAt,
		}
		if up.Finalized {
			if pts, ok := scoring.PointsFor(up.Result, &up.Prediction.Predicted); ok {
				e.Points = &pts
			}
		}
		out = append(out, e)
	}
	return out, nil
}
