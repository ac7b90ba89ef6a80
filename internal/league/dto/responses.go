package dto

import "github.com/radieske/prediction-league/internal/league"

type ErrorResponse struct {
	Error string `json:"error"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  league.User `json:"user"`
}

type PredictionAccepted struct {
	Status  string `json:"status"` // "ok"
	MatchID string `json:"match_id"`
}

type MatchResponse struct {
	Match league.Match `json:"match"`
}
