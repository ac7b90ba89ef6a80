// Package leaderboard monta a classificação de um torneio a partir dos resultados finalizados.
package leaderboard

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/prediction-league/internal/league"
	"github.com/radieske/prediction-league/internal/league/repo"
	"github.com/radieske/prediction-league/internal/league/scoring"
	"github.com/radieske/prediction-league/internal/shared/metrics"
)

// unknownName é exibido quando o usuário do palpite não tem mais cadastro
const unknownName = "Unknown"

// Cache guarda leaderboards prontos por torneio, versionados por geração.
// Invalidate avança a geração; entradas gravadas sob uma geração antiga nunca mais são lidas.
type Cache interface {
	Generation(ctx context.Context, tournamentID string) (int64, error)
	Get(ctx context.Context, tournamentID string, gen int64) ([]league.Standing, bool, error)
	Set(ctx context.Context, tournamentID string, gen int64, standings []league.Standing) error
	Invalidate(ctx context.Context, tournamentID string) error
}

// Aggregator recalcula a classificação sempre a partir dos placares finalizados;
// os pontos gravados nos palpites nunca são lidos aqui.
type Aggregator struct {
	store   repo.Store
	cache   Cache
	log     *zap.Logger
	metrics *metrics.League
}

// NewAggregator cria o agregador; cache e m podem ser nil
func NewAggregator(store repo.Store, cache Cache, log *zap.Logger, m *metrics.League) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{store: store, cache: cache, log: log, metrics: m}
}

// Invalidate descarta o cache do torneio; sem cache configurado não faz nada
func (a *Aggregator) Invalidate(ctx context.Context, tournamentID string) error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Invalidate(ctx, tournamentID)
}

// Standings retorna a classificação do torneio ordenada por pontos (desc) e user id (asc).
// Torneio sem partidas finalizadas resulta em lista vazia.
func (a *Aggregator) Standings(ctx context.Context, tournamentID string) ([]league.Standing, error) {
	if err := league.CheckID("tournament", tournamentID); err != nil {
		return nil, err
	}

	// a geração é lida antes do build: se um Finalize/Reverse invalidar no meio,
	// o resultado vai para uma chave que ninguém mais consulta
	var gen int64
	cacheable := false
	if a.cache != nil {
		g, err := a.cache.Generation(ctx, tournamentID)
		if err != nil {
			a.metrics.CacheLookup("error")
			a.log.Warn("leaderboard cache generation read failed", zap.String("tournament_id", tournamentID), zap.Error(err))
		} else {
			gen, cacheable = g, true
			cached, ok, err := a.cache.Get(ctx, tournamentID, gen)
			switch {
			case err != nil:
				a.metrics.CacheLookup("error")
				a.log.Warn("leaderboard cache read failed", zap.String("tournament_id", tournamentID), zap.Error(err))
			case ok:
				a.metrics.CacheLookup("hit")
				return cached, nil
			default:
				a.metrics.CacheLookup("miss")
			}
		}
	}

	start := time.Now()
	standings, err := a.build(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	a.metrics.LeaderboardBuilt(time.Since(start))

	if cacheable {
		if err := a.cache.Set(ctx, tournamentID, gen, standings); err != nil {
			a.log.Warn("leaderboard cache write failed", zap.String("tournament_id", tournamentID), zap.Error(err))
		}
	}
	return standings, nil
}

func (a *Aggregator) build(ctx context.Context, tournamentID string) ([]league.Standing, error) {
	matches, err := a.store.FinalizedMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []league.Standing{}, nil
	}

	results := make(map[string]*league.Score, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		results[m.ID] = m.Result
		ids = append(ids, m.ID)
	}

	preds, err := a.store.PredictionsForMatches(ctx, ids)
	if err != nil {
		return nil, err
	}

	totals := map[int64]int{}
	for _, p := range preds {
		if _, seen := totals[p.UserID]; !seen {
			totals[p.UserID] = 0
		}
		if pts, ok := scoring.PointsFor(results[p.MatchID], &p.Predicted); ok {
			totals[p.UserID] += pts
		}
	}

	userIDs := make([]int64, 0, len(totals))
	for id := range totals {
		userIDs = append(userIDs, id)
	}
	names, err := a.store.UserNames(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	out := make([]league.Standing, 0, len(totals))
	for id, total := range totals {
		name, ok := names[id]
		if !ok {
			name = unknownName
		}
		out = append(out, league.Standing{UserID: id, Name: name, TotalPoints: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}
