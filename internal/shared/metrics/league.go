package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// League agrupa as métricas dos serviços da liga.
// Métodos aceitam receiver nil para que testes possam omitir métricas.
type League struct {
	transitions  *prometheus.CounterVec
	predictions  *prometheus.CounterVec
	rescored     prometheus.Counter
	leaderboard  prometheus.Histogram
	cacheLookups *prometheus.CounterVec
}

// NewLeague cria e registra as métricas no registerer informado
func NewLeague(reg prometheus.Registerer) *League {
	m := &League{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_match_transitions_total",
			Help: "transições de estado de partida por operação e resultado",
		}, []string{"op", "outcome"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_predictions_total",
			Help: "palpites recebidos por resultado",
		}, []string{"outcome"}),
		rescored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_predictions_rescored_total",
			Help: "palpites com pontos recalculados na finalização",
		}),
		leaderboard: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "league_leaderboard_build_seconds",
			Help:    "tempo para montar o leaderboard a partir do banco",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_leaderboard_cache_lookups_total",
			Help: "consultas ao cache do leaderboard (hit/miss/error)",
		}, []string{"result"}),
	}
	reg.MustRegister(m.transitions, m.predictions, m.rescored, m.leaderboard, m.cacheLookups)
	return m
}

func (m *League) Transition(op, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(op, outcome).Inc()
}

func (m *League) Prediction(outcome string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(outcome).Inc()
}

func (m *League) Rescored(n int) {
	if m == nil {
		return
	}
	m.rescored.Add(float64(n))
}

func (m *League) LeaderboardBuilt(d time.Duration) {
	if m == nil {
		return
	}
	m.leaderboard.Observe(d.Seconds())
}

func (m *League) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
