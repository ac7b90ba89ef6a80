package lockpolicy

import "time"

// DefaultWindow é quanto tempo antes do kickoff os palpites são travados
const DefaultWindow = 2 * time.Hour

// Policy decide se uma partida ainda aceita palpites
type Policy struct {
	Window time.Duration
}

// New cria a política; janela <= 0 cai no default
func New(window time.Duration) Policy {
	if window <= 0 {
		window = DefaultWindow
	}
	return Policy{Window: window}
}

// Cutoff é o último instante (exclusivo) em que palpites são aceitos
func (p Policy) Cutoff(kickoff time.Time) time.Time {
	return kickoff.Add(-p.Window)
}

// Editable retorna true somente se now for estritamente anterior ao cutoff
func (p Policy) Editable(kickoff, now time.Time) bool {
	return now.Before(p.Cutoff(kickoff))
}
