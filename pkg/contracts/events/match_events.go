package events

import "time"

// Tipos de evento publicados no tópico "match_events"
const (
	TypeMatchFinalized = "MATCH_FINALIZED"
	TypeMatchReverted  = "MATCH_REVERTED"
)

// MatchEvent é emitido após o commit de uma transição de estado da partida.
// HomeGoals/AwayGoals e PredictionsScored só vêm em MATCH_FINALIZED;
// PredictionsCleared só vem em MATCH_REVERTED.
type MatchEvent struct {
	Type               string    `json:"type"`
	MatchID            string    `json:"match_id"`
	TournamentID       string    `json:"tournament_id"`
	HomeTeam           string    `json:"home_team"`
	AwayTeam           string    `json:"away_team"`
	HomeGoals          *int      `json:"home_goals,omitempty"`
	AwayGoals          *int      `json:"away_goals,omitempty"`
	PredictionsScored  int       `json:"predictions_scored,omitempty"`
	PredictionsCleared int       `json:"predictions_cleared,omitempty"`
	Ts                 time.Time `json:"ts"`
}
