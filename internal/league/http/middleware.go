package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/radieske/prediction-league/internal/league"
)

type ctxKey struct{}

// identityFrom devolve a identidade colocada no contexto por authenticate
func identityFrom(ctx context.Context) (league.Identity, bool) {
	who, ok := ctx.Value(ctxKey{}).(league.Identity)
	return who, ok
}

// authenticate exige "Authorization: Bearer <token>"
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			a.writeError(w, r, fmt.Errorf("%w: missing bearer token", league.ErrUnauthorized))
			return
		}
		who, err := a.Accounts.Verify(strings.TrimSpace(raw))
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, who)))
	})
}

func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		who, _ := identityFrom(r.Context())
		if !a.Accounts.IsAdmin(who) {
			a.writeError(w, r, fmt.Errorf("%w: admin only", league.ErrForbidden))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		who, _ := identityFrom(r.Context())
		if a.Limiter != nil && !a.Limiter.Allow(who.UserID) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many submissions, slow down"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserLimiter é um token bucket por usuário
type UserLimiter struct {
	mu      sync.Mutex
	perUser map[int64]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewUserLimiter aceita perMinute envios por minuto com rajada de burst; perMinute <= 0 desativa
func NewUserLimiter(perMinute, burst int) *UserLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &UserLimiter{
		perUser: map[int64]*rate.Limiter{},
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
	}
}

func (l *UserLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	lim, ok := l.perUser[userID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.perUser[userID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
