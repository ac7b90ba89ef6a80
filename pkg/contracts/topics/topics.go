package topics

const (
	// Ciclo de vida das partidas (finalize / reverse)
	MatchEvents = "match_events"

	// Palpites enviados
	PredictionEvents = "prediction_events"
)
