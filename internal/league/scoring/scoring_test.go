package scoring

import (
	"testing"

	"github.com/radieske/prediction-league/internal/league"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		home, away int
		want       Outcome
	}{
		{2, 1, HomeWin},
		{0, 3, AwayWin},
		{0, 0, Draw},
		{4, 4, Draw},
		{1, 0, HomeWin},
	}
	for _, tt := range tests {
		if got := Classify(tt.home, tt.away); got != tt.want {
			t.Errorf("Classify(%d,%d) = %s, want %s", tt.home, tt.away, got, tt.want)
		}
	}
}

func TestClassifyIsTotalAndDeterministic(t *testing.T) {
	for h := 0; h <= 9; h++ {
		for a := 0; a <= 9; a++ {
			got := Classify(h, a)
			if got != HomeWin && got != AwayWin && got != Draw {
				t.Fatalf("Classify(%d,%d) = %q, not a known outcome", h, a, got)
			}
			if again := Classify(h, a); again != got {
				t.Fatalf("Classify(%d,%d) not deterministic: %s then %s", h, a, got, again)
			}
		}
	}
}

func TestPoints(t *testing.T) {
	tests := []struct {
		name              string
		actual, predicted league.Score
		want              int
	}{
		{"exact score", league.Score{Home: 2, Away: 1}, league.Score{Home: 2, Away: 1}, 40},
		{"outcome and difference", league.Score{Home: 2, Away: 1}, league.Score{Home: 1, Away: 0}, 20},
		{"draw outcome and difference", league.Score{Home: 1, Away: 1}, league.Score{Home: 0, Away: 0}, 20},
		{"opposite result", league.Score{Home: 3, Away: 0}, league.Score{Home: 0, Away: 3}, 0},
		{"outcome and home goals", league.Score{Home: 2, Away: 0}, league.Score{Home: 2, Away: 1}, 20},
		{"away goals only", league.Score{Home: 0, Away: 1}, league.Score{Home: 3, Away: 1}, 10},
		{"outcome and away goals", league.Score{Home: 3, Away: 0}, league.Score{Home: 1, Away: 0}, 20},
		{"goalless draw exact", league.Score{Home: 0, Away: 0}, league.Score{Home: 0, Away: 0}, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Points(tt.actual, tt.predicted); got != tt.want {
				t.Errorf("Points(%v, %v) = %d, want %d", tt.actual, tt.predicted, got, tt.want)
			}
		})
	}
}

func TestPointsFor(t *testing.T) {
	actual := &league.Score{Home: 2, Away: 1}

	if _, ok := PointsFor(nil, &league.Score{}); ok {
		t.Error("expected no score when actual result is missing")
	}
	if _, ok := PointsFor(actual, nil); ok {
		t.Error("expected no score when prediction is missing")
	}
	if _, ok := PointsFor(&league.Score{Home: -1, Away: 0}, actual); ok {
		t.Error("expected no score for a negative result")
	}
	if got, ok := PointsFor(actual, &league.Score{Home: 2, Away: 1}); !ok || got != 40 {
		t.Errorf("PointsFor = (%d, %v), want (40, true)", got, ok)
	}
}
