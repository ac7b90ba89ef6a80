package prediction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/radieske/prediction-league/internal/league"
	"github.com/radieske/prediction-league/internal/league/lockpolicy"
	"github.com/radieske/prediction-league/internal/league/repo"
	"github.com/radieske/prediction-league/internal/league/repo/repotest"
	"github.com/radieske/prediction-league/pkg/contracts/events"
)

var kickoff = time.Date(2026, 6, 12, 20, 0, 0, 0, time.UTC)

type fakePublisher struct {
	mu     sync.Mutex
	events []events.PredictionSubmitted
}

func (f *fakePublisher) PublishPredictionSubmitted(_ context.Context, e events.PredictionSubmitted) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func newService(s repo.Store, now time.Time, pub Publisher) *Service {
	return NewService(s, lockpolicy.New(2*time.Hour), pub, nil, nil).WithClock(fixedClock(now))
}

func TestSubmitLockBoundary(t *testing.T) {
	cutoff := kickoff.Add(-2 * time.Hour)
	cases := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"well before cutoff", kickoff.Add(-24 * time.Hour), nil},
		{"one nanosecond before cutoff", cutoff.Add(-time.Nanosecond), nil},
		{"exactly at cutoff", cutoff, league.ErrConflict},
		{"after cutoff", cutoff.Add(time.Minute), league.ErrConflict},
		{"after kickoff", kickoff.Add(time.Hour), league.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := repotest.NewSQLite(t)
			tr := repotest.Tournament(t, s)
			m := repotest.Match(t, s, tr.ID, kickoff)
			u := repotest.User(t, s, "ana")

			err := newService(s, tc.now, nil).Submit(context.Background(), league.Identity{UserID: u.ID}, m.ID, league.Score{Home: 1, Away: 0})
			if tc.wantErr == nil && err != nil {
				t.Fatalf("Submit = %v, want success", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("Submit = %v, want %v", err, tc.wantErr)
			}

			hist, _ := s.History(context.Background(), u.ID, m.ID)
			if tc.wantErr != nil && len(hist) != 0 {
				t.Errorf("rejected submission left %d history rows", len(hist))
			}
		})
	}
}

func TestSubmitAppendsHistoryEveryTime(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	m := repotest.Match(t, s, tr.ID, kickoff)
	u := repotest.User(t, s, "bia")
	pub := &fakePublisher{}
	svc := newService(s, kickoff.Add(-48*time.Hour), pub)
	who := league.Identity{UserID: u.ID}

	for _, sc := range []league.Score{{Home: 1, Away: 1}, {Home: 1, Away: 1}, {Home: 2, Away: 0}} {
		if err := svc.Submit(ctx, who, m.ID, sc); err != nil {
			t.Fatalf("Submit(%v): %v", sc, err)
		}
	}

	hist, err := s.History(ctx, u.ID, m.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 3 {
		t.Errorf("history rows = %d, want 3 (unchanged resubmission still recorded)", len(hist))
	}

	preds, _ := s.PredictionsForMatches(ctx, []string{m.ID})
	if len(preds) != 1 || preds[0].Predicted != (league.Score{Home: 2, Away: 0}) {
		t.Errorf("live predictions = %+v, want a single 2-0", preds)
	}
	if preds[0].Points != nil {
		t.Errorf("open match prediction has points %d", *preds[0].Points)
	}

	if len(pub.events) != 3 || pub.events[2].TournamentID != tr.ID || pub.events[2].HomeGoals != 2 {
		t.Errorf("published = %+v", pub.events)
	}
}

func TestSubmitErrors(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	m := repotest.Match(t, s, tr.ID, kickoff)
	u := repotest.User(t, s, "caio")
	svc := newService(s, kickoff.Add(-48*time.Hour), nil)
	who := league.Identity{UserID: u.ID}

	if err := svc.Submit(ctx, who, league.NewID(), league.Score{}); !errors.Is(err, league.ErrNotFound) {
		t.Errorf("unknown match = %v, want ErrNotFound", err)
	}
	if err := svc.Submit(ctx, who, "bogus", league.Score{}); !errors.Is(err, league.ErrNotFound) {
		t.Errorf("malformed id = %v, want ErrNotFound", err)
	}
	if err := svc.Submit(ctx, who, m.ID, league.Score{Home: 0, Away: -2}); !errors.Is(err, league.ErrInvalidInput) {
		t.Errorf("negative goals = %v, want ErrInvalidInput", err)
	}
}

func TestSubmitOnFinalizedMatchIsConflict(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	m := repotest.Match(t, s, tr.ID, kickoff)
	u := repotest.User(t, s, "davi")
	err := s.WithTx(ctx, func(tx repo.Tx) error {
		return tx.SetResult(ctx, m.ID, &league.Score{Home: 0, Away: 0})
	})
	if err != nil {
		t.Fatalf("SetResult: %v", err)
	}

	// relógio antes do cutoff: a trava vem do estado da partida, não do horário
	err = newService(s, kickoff.Add(-48*time.Hour), nil).Submit(ctx, league.Identity{UserID: u.ID}, m.ID, league.Score{})
	if !errors.Is(err, league.ErrConflict) {
		t.Errorf("Submit on finalized match = %v, want ErrConflict", err)
	}
}

func TestConcurrentFirstSubmissionsKeepOneRow(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	m := repotest.Match(t, s, tr.ID, kickoff)
	u := repotest.User(t, s, "eva")
	svc := newService(s, kickoff.Add(-48*time.Hour), nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- svc.Submit(ctx, league.Identity{UserID: u.ID}, m.ID, league.Score{Home: i, Away: 0})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Submit: %v", err)
		}
	}

	preds, _ := s.PredictionsForMatches(ctx, []string{m.ID})
	if len(preds) != 1 {
		t.Errorf("live predictions = %d, want 1", len(preds))
	}
	hist, _ := s.History(ctx, u.ID, m.ID)
	if len(hist) != 8 {
		t.Errorf("history rows = %d, want 8", len(hist))
	}
}

func TestForTournament(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	done := repotest.Match(t, s, tr.ID, kickoff)
	open := repotest.Match(t, s, tr.ID, kickoff.Add(24*time.Hour))
	u := repotest.User(t, s, "fabi")
	other := repotest.User(t, s, "gil")
	repotest.Predict(t, s, u.ID, done.ID, 2, 1)
	repotest.Predict(t, s, u.ID, open.ID, 0, 0)
	repotest.Predict(t, s, other.ID, done.ID, 5, 5)

	err := s.WithTx(ctx, func(tx repo.Tx) error {
		return tx.SetResult(ctx, done.ID, &league.Score{Home: 3, Away: 2})
	})
	if err != nil {
		t.Fatalf("SetResult: %v", err)
	}

	got, err := newService(s, kickoff, nil).ForTournament(ctx, league.Identity{UserID: u.ID}, tr.ID)
	if err != nil {
		t.Fatalf("ForTournament: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %+v, want 2", got)
	}
	if got[0].MatchID != done.ID || got[0].Points == nil || *got[0].Points != 20 {
		t.Errorf("finalized entry = %+v, want 20 points", got[0])
	}
	if got[1].MatchID != open.ID || got[1].Points != nil {
		t.Errorf("open entry = %+v, want nil points", got[1])
	}

	empty, err := newService(s, kickoff, nil).ForTournament(ctx, league.Identity{UserID: u.ID}, league.NewID())
	if err != nil || len(empty) != 0 {
		t.Errorf("unknown tournament = %v, %v; want empty", empty, err)
	}
}
