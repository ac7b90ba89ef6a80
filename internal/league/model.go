package league

import "time"

// Stage é a fase do torneio a que uma partida pertence
type Stage string

const (
	StageGroup Stage = "GROUP"
	StageR32   Stage = "R32"
	StageR16   Stage = "R16"
	StageQF    Stage = "QF"
	StageSF    Stage = "SF"
	StageThird Stage = "THIRD"
	StageFinal Stage = "FINAL"
)

// Valid informa se a fase é uma das conhecidas
func (s Stage) Valid() bool {
	switch s {
	case StageGroup, StageR32, StageR16, StageQF, StageSF, StageThird, StageFinal:
		return true
	}
	return false
}

// Score é um placar (gols do mandante, gols do visitante)
type Score struct {
	Home int `json:"home_goals"`
	Away int `json:"away_goals"`
}

// Tournament agrupa partidas; criado externamente (seed)
type Tournament struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Year            int       `json:"year"`
	HostTimezone    string    `json:"host_timezone"`
	GroupStageStart time.Time `json:"group_stage_start"`
	GroupStageEnd   time.Time `json:"group_stage_end"`
	KnockoutsStart  time.Time `json:"knockouts_start"`
}

// Match é uma partida agendada. Result é nil enquanto a partida está aberta;
// Finalized=true implica Result != nil.
type Match struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournament_id"`
	Stage        Stage     `json:"stage"`
	GroupName    *string   `json:"group_name"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	KickoffUTC   time.Time `json:"kickoff_utc"`
	Venue        *string   `json:"venue"`
	Result       *Score    `json:"result"`
	Finalized    bool      `json:"result_finalized"`
}

// Prediction é o palpite vivo de um usuário para uma partida (único por user+match)
type Prediction struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MatchID   string    `json:"match_id"`
	Predicted Score     `json:"predicted"`
	Points    *int      `json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntry é uma linha imutável do histórico de palpites (auditoria)
type HistoryEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MatchID   string    `json:"match_id"`
	Predicted Score     `json:"predicted"`
	CreatedAt time.Time `json:"created_at"`
}

// User é a conta de um participante
type User struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	PasswordHash  string `json:"-"`
	Timezone      string `json:"timezone"`
	IsAdmin       bool   `json:"is_admin"`
	PaymentStatus string `json:"payment_status"`
}

// Identity é quem está fazendo a requisição, conforme o serviço de identidade
type Identity struct {
	UserID  int64
	Email   string
	IsAdmin bool
}

// Standing é uma linha do leaderboard
type Standing struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	TotalPoints int    `json:"total_points"`
}
