package ws

import "github.com/radieske/prediction-league/pkg/contracts/events"

// ClientMsg representa uma mensagem recebida do cliente WebSocket
type ClientMsg struct {
	Type         string `json:"type"`          // subscribe | unsubscribe | ping
	TournamentID string `json:"tournament_id"` // requerido em subscribe/unsubscribe
}

// FeedUpdate é o que o cliente inscrito no torneio recebe
type FeedUpdate struct {
	Type         string            `json:"type"` // "match_event"
	TournamentID string            `json:"tournament_id"`
	Event        events.MatchEvent `json:"event"`
}
