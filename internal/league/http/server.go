package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/radieske/prediction-league/internal/league"
	"github.com/radieske/prediction-league/internal/league/identity"
	"github.com/radieske/prediction-league/internal/league/prediction"
)

// Accounts é o serviço de identidade visto pelo HTTP
type Accounts interface {
	Verify(token string) (league.Identity, error)
	IsAdmin(who league.Identity) bool
	Register(ctx context.Context, r identity.Registration) (league.User, string, error)
	Login(ctx context.Context, email, password string) (league.User, string, error)
	Me(ctx context.Context, who league.Identity) (league.User, error)
}

// Catalog lista torneios e partidas
type Catalog interface {
	ListTournaments(ctx context.Context) ([]league.Tournament, error)
	ListMatches(ctx context.Context, tournamentID string) ([]league.Match, error)
}

// Results aplica as transições de resultado das partidas
type Results interface {
	Finalize(ctx context.Context, matchID string, result league.Score) (league.Match, error)
	Reverse(ctx context.Context, matchID string) (league.Match, error)
}

// Predictions recebe e lista palpites
type Predictions interface {
	Submit(ctx context.Context, who league.Identity, matchID string, predicted league.Score) error
	ForTournament(ctx context.Context, who league.Identity, tournamentID string) ([]prediction.Entry, error)
}

// Leaderboard devolve a classificação de um torneio
type Leaderboard interface {
	Standings(ctx context.Context, tournamentID string) ([]league.Standing, error)
}

// API expõe os endpoints REST da liga
type API struct {
	Accounts    Accounts
	Catalog     Catalog
	Results     Results
	Predictions Predictions
	Leaderboard Leaderboard
	Limiter     *UserLimiter // nil desativa o limite de envio de palpites
	Live        http.Handler // feed WebSocket; nil desativa /ws
	Log         *zap.Logger

	validate *validator.Validate
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	if a.Log == nil {
		a.Log = zap.NewNop()
	}
	a.validate = validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/auth/register", a.register)
	r.Post("/auth/login", a.login)
	if a.Live != nil {
		r.Handle("/ws", a.Live)
	}

	r.Group(func(r chi.Router) {
		r.Use(a.authenticate)
		r.Get("/auth/me", a.me)
		r.Get("/tournaments", a.listTournaments)
		r.Get("/matches/{tournamentID}", a.listMatches)
		r.Get("/leaderboard/{tournamentID}", a.leaderboard)
		r.Get("/predictions/tournament/{tournamentID}", a.myPredictions)
		r.With(a.throttle).Post("/predictions/{matchID}", a.submitPrediction)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAdmin)
			r.Post("/matches/{matchID}/result", a.finalize)
			r.Delete("/matches/{matchID}/result", a.reverse)
		})
	})
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, league.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, league.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, league.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, league.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, league.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError mapeia os erros da liga para status HTTP; 5xx é logado e não expõe o erro interno
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode lê o corpo JSON e valida as tags; qualquer falha vira ErrInvalidInput
func (a *API) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: bad json: %v", league.ErrInvalidInput, err)
	}
	if err := a.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", league.ErrInvalidInput, err)
	}
	return nil
}
