package dto

// Os gols são ponteiros para distinguir "ausente" de zero; JSON com número fracionário
// ou string falha já no decode.

type ResultRequest struct {
	HomeGoals *int `json:"home_goals" validate:"required,min=0"`
	AwayGoals *int `json:"away_goals" validate:"required,min=0"`
}

type PredictionRequest struct {
	PredictedHomeGoals *int `json:"predicted_home_goals" validate:"required,min=0"`
	PredictedAwayGoals *int `json:"predicted_away_goals" validate:"required,min=0"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Timezone string `json:"timezone" validate:"omitempty,timezone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
