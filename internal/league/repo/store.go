package repo

import (
	"context"

	"github.com/radieske/prediction-league/internal/league"
)

// LockMode define o tipo de lock de linha pedido ao ler uma partida dentro de uma transação
type LockMode int

const (
	// LockShared impede que a partida mude de estado até o fim da transação
	LockShared LockMode = iota + 1
	// LockExclusive dá posse exclusiva da partida até o fim da transação
	LockExclusive
)

// Store é o contrato de persistência usado pelos serviços da liga
type Store interface {
	// WithTx executa fn numa transação; qualquer erro de fn faz rollback completo
	WithTx(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error

	ListTournaments(ctx context.Context) ([]league.Tournament, error)
	ListMatches(ctx context.Context, tournamentID string) ([]league.Match, error)
	GetMatch(ctx context.Context, matchID string) (league.Match, error)
	FinalizedMatches(ctx context.Context, tournamentID string) ([]league.Match, error)
	PredictionsForMatches(ctx context.Context, matchIDs []string) ([]league.Prediction, error)
	UserPredictions(ctx context.Context, userID int64, tournamentID string) ([]UserPrediction, error)
	History(ctx context.Context, userID int64, matchID string) ([]league.HistoryEntry, error)

	CreateUser(ctx context.Context, u league.User) (league.User, error)
	UserByEmail(ctx context.Context, email string) (league.User, error)
	UserByID(ctx context.Context, id int64) (league.User, error)
	UserNames(ctx context.Context, ids []int64) (map[int64]string, error)

	CreateTournament(ctx context.Context, t league.Tournament) error
	CreateMatch(ctx context.Context, m league.Match) error
}

// Tx são as operações disponíveis dentro de uma transação
type Tx interface {
	// LockMatch lê a partida segurando um lock de linha até commit/rollback
	LockMatch(ctx context.Context, matchID string, mode LockMode) (league.Match, error)
	// SetResult grava o placar e marca finalized; result nil limpa o placar e reabre a partida
	SetResult(ctx context.Context, matchID string, result *league.Score) error
	PredictionsForMatch(ctx context.Context, matchID string) ([]league.Prediction, error)
	SetPoints(ctx context.Context, predictionID int64, points int) error
	ClearPoints(ctx context.Context, matchID string) (int64, error)
	AppendHistory(ctx context.Context, e league.HistoryEntry) error
	UpsertPrediction(ctx context.Context, p league.Prediction) error
}

// UserPrediction junta o palpite do usuário com o estado atual da partida
type UserPrediction struct {
	Prediction league.Prediction
	Result     *league.Score
	Finalized  bool
}
