package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/prediction-league/internal/league"
	"github.com/radieske/prediction-league/internal/league/dto"
	"github.com/radieske/prediction-league/internal/league/identity"
)

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, tok, err := a.Accounts.Register(r.Context(), identity.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Timezone: req.Timezone,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.AuthResponse{Token: tok, User: u})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, tok, err := a.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AuthResponse{Token: tok, User: u})
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	who, _ := identityFrom(r.Context())
	u, err := a.Accounts.Me(r.Context(), who)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// listTournaments retorna todos os torneios, mais recentes primeiro
func (a *API) listTournaments(w http.ResponseWriter, r *http.Request) {
	ts, err := a.Catalog.ListTournaments(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

// listMatches retorna as partidas do torneio por ordem de kickoff
func (a *API) listMatches(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")
	if err := league.CheckID("tournament", id); err != nil {
		a.writeError(w, r, err)
		return
	}
	ms, err := a.Catalog.ListMatches(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

// finalize grava o placar oficial (admin)
func (a *API) finalize(w http.ResponseWriter, r *http.Request) {
	var req dto.ResultRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	m, err := a.Results.Finalize(r.Context(), chi.URLParam(r, "matchID"), league.Score{Home: *req.HomeGoals, Away: *req.AwayGoals})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MatchResponse{Match: m})
}

// reverse reabre a partida (admin)
func (a *API) reverse(w http.ResponseWriter, r *http.Request) {
	m, err := a.Results.Reverse(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MatchResponse{Match: m})
}

func (a *API) submitPrediction(w http.ResponseWriter, r *http.Request) {
	var req dto.PredictionRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	who, _ := identityFrom(r.Context())
	matchID := chi.URLParam(r, "matchID")
	err := a.Predictions.Submit(r.Context(), who, matchID, league.Score{Home: *req.PredictedHomeGoals, Away: *req.PredictedAwayGoals})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.PredictionAccepted{Status: "ok", MatchID: matchID})
}

func (a *API) myPredictions(w http.ResponseWriter, r *http.Request) {
	who, _ := identityFrom(r.Context())
	entries, err := a.Predictions.ForTournament(r.Context(), who, chi.URLParam(r, "tournamentID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) leaderboard(w http.ResponseWriter, r *http.Request) {
	st, err := a.Leaderboard.Standings(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
