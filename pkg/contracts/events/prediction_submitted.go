package events

// PredictionSubmitted é emitido a cada palpite aceito (o mesmo fato que vai para o histórico)
type PredictionSubmitted struct {
	UserID       int64  `json:"user_id"`
	MatchID      string `json:"match_id"`
	TournamentID string `json:"tournament_id"`
	HomeGoals    int    `json:"home_goals"`
	AwayGoals    int    `json:"away_goals"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
