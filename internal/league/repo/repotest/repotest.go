// Package repotest monta um store SQLite descartável para testes de pacotes que dependem de repo.
package repotest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/radieske/prediction-league/internal/league"
	"github.com/radieske/prediction-league/internal/league/repo"
	"github.com/radieske/prediction-league/internal/shared/db"
)

// NewSQLite cria um banco novo em t.TempDir() com o schema aplicado
func NewSQLite(t testing.TB) *repo.SQL {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "league.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	s := repo.NewSQLite(conn)
	t.Cleanup(func() { _ = s.Close() })

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return s
}

var seq atomic.Int64

// Tournament cria um torneio de teste
func Tournament(t testing.TB, s repo.Store) league.Tournament {
	t.Helper()
	start := time.Date(2026, 6, 10, 10, 0, 0, 0, time.UTC)
	tr := league.Tournament{
		ID:              league.NewID(),
		Name:            fmt.Sprintf("Dummy Cup %d", seq.Add(1)),
		Year:            2026,
		HostTimezone:    "UTC",
		GroupStageStart: start,
		GroupStageEnd:   start.Add(10 * 24 * time.Hour),
		KnockoutsStart:  start.Add(11 * 24 * time.Hour),
	}
	if err := s.CreateTournament(context.Background(), tr); err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	return tr
}

// Match cria uma partida aberta no torneio com o kickoff informado
func Match(t testing.TB, s repo.Store, tournamentID string, kickoff time.Time) league.Match {
	t.Helper()
	n := seq.Add(1)
	group := "Group A"
	m := league.Match{
		ID:           league.NewID(),
		TournamentID: tournamentID,
		Stage:        league.StageGroup,
		GroupName:    &group,
		HomeTeam:     fmt.Sprintf("Home %d", n),
		AwayTeam:     fmt.Sprintf("Away %d", n),
		KickoffUTC:   kickoff.UTC(),
	}
	if err := s.CreateMatch(context.Background(), m); err != nil {
		t.Fatalf("create match: %v", err)
	}
	return m
}

// User cria um usuário comum
func User(t testing.TB, s repo.Store, name string) league.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), league.User{
		Name:         name,
		Email:        fmt.Sprintf("%s.%d@example.com", name, seq.Add(1)),
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Predict grava um palpite direto no banco, sem passar pela política de trava
func Predict(t testing.TB, s repo.Store, userID int64, matchID string, home, away int) {
	t.Helper()
	err := s.WithTx(context.Background(), func(tx repo.Tx) error {
		return tx.UpsertPrediction(context.Background(), league.Prediction{
			UserID:    userID,
			MatchID:   matchID,
			Predicted: league.Score{Home: home, Away: away},
			UpdatedAt: time.Now(),
		})
	})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
}

// Prediction busca o palpite vivo de um usuário numa partida
func Prediction(t testing.TB, s repo.Store, userID int64, matchID string) league.Prediction {
	t.Helper()
	preds, err := s.PredictionsForMatches(context.Background(), []string{matchID})
	if err != nil {
		t.Fatalf("predictions for match: %v", err)
	}
	for _, p := range preds {
		if p.UserID == userID {
			return p
		}
	}
	t.Fatalf("no prediction for user %d on match %s", userID, matchID)
	return league.Prediction{}
}
