package scoring

import "github.com/radieske/prediction-league/internal/league"

// Outcome é o resultado de 90 minutos de um placar
type Outcome string

const (
	HomeWin Outcome = "HOME_WIN"
	AwayWin Outcome = "AWAY_WIN"
	Draw    Outcome = "DRAW"
)

// PointsPerHit é o valor de cada componente acertado (resultado, saldo, gols mandante, gols visitante)
const PointsPerHit = 10

// Classify mapeia um placar para vitória do mandante, do visitante ou empate
func Classify(home, away int) Outcome {
	switch {
	case home > away:
		return HomeWin
	case home < away:
		return AwayWin
	default:
		return Draw
	}
}

// Points pontua um palpite contra o placar real (0 a 40).
// Cada componente é avaliado de forma independente: placar exato soma os quatro.
func Points(actual, predicted league.Score) int {
	points := 0
	if Classify(actual.Home, actual.Away) == Classify(predicted.Home, predicted.Away) {
		points += PointsPerHit
	}
	if actual.Home-actual.Away == predicted.Home-predicted.Away {
		points += PointsPerHit
	}
	if actual.Home == predicted.Home {
		points += PointsPerHit
	}
	if actual.Away == predicted.Away {
		points += PointsPerHit
	}
	return points
}

// PointsFor é a versão que tolera placares ausentes ou inválidos;
// ok=false significa "sem pontuação" (partida ainda não decidida).
func PointsFor(actual, predicted *league.Score) (points int, ok bool) {
	if actual == nil || predicted == nil {
		return 0, false
	}
	if league.ValidateScore(*actual) != nil || league.ValidateScore(*predicted) != nil {
		return 0, false
	}
	return Points(*actual, *predicted), true
}
