package finalize

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/radieske/prediction-league/internal/league"
	"github.com/radieske/prediction-league/internal/league/repo"
	"github.com/radieske/prediction-league/internal/league/repo/repotest"
	"github.com/radieske/prediction-league/pkg/contracts/events"
)

var kickoff = time.Date(2026, 6, 11, 18, 0, 0, 0, time.UTC)

type fakePublisher struct {
	mu     sync.Mutex
	events []events.MatchEvent
	err    error
}

func (f *fakePublisher) PublishMatchEvent(_ context.Context, e events.MatchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

type fakeCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeCache) Invalidate(_ context.Context, tournamentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, tournamentID)
	return nil
}

// failingStore injeta uma falha em SetPoints depois que o placar já foi gravado na transação
type failingStore struct {
	repo.Store
}

func (f failingStore) WithTx(ctx context.Context, fn func(repo.Tx) error) error {
	return f.Store.WithTx(ctx, func(tx repo.Tx) error {
		return fn(failingTx{Tx: tx})
	})
}

type failingTx struct {
	repo.Tx
}

func (failingTx) SetPoints(context.Context, int64, int) error {
	return errors.New("disk on fire")
}

func points(t *testing.T, s repo.Store, userID int64, matchID string) *int {
	t.Helper()
	return repotest.Prediction(t, s, userID, matchID).Points
}

func TestFinalizeScoresEveryPrediction(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	m := repotest.Match(t, s, tr.ID, kickoff)
	exact := repotest.User(t, s, "exact")
	near := repotest.User(t, s, "near")
	wrong := repotest.User(t, s, "wrong")
	repotest.Predict(t, s, exact.ID, m.ID, 2, 1)
	repotest.Predict(t, s, near.ID, m.ID, 1, 0)
	repotest.Predict(t, s, wrong.ID, m.ID, 0, 3)

	pub := &fakePublisher{}
	cache := &fakeCache{}
	svc := NewService(s, pub, cache, nil, nil)

	got, err := svc.Finalize(ctx, m.ID, league.Score{Home: 2, Away: 1})
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !got.Finalized || got.Result == nil || *got.Result != (league.Score{Home: 2, Away: 1}) {
		t.Errorf("returned match = %+v", got)
	}

	want := map[int64]int{exact.ID: 40, near.ID: 20, wrong.ID: 0}
	for uid, w := range want {
		p := points(t, s, uid, m.ID)
		if p == nil || *p != w {
			t.Errorf("user %d points = %v, want %d", uid, p, w)
		}
	}

	if len(pub.events) != 1 || pub.events[0].Type != events.TypeMatchFinalized || pub.events[0].PredictionsScored != 3 {
		t.Errorf("published = %+v", pub.events)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != tr.ID {
		t.Errorf("invalidated = %v", cache.invalidated)
	}
}

func TestFinalizeTwiceIsConflict(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	m := repotest.Match(t, s, tr.ID, kickoff)
	u := repotest.User(t, s, "ana")
	repotest.Predict(t, s, u.ID, m.ID, 1, 1)
	svc := NewService(s, nil, nil, nil, nil)

	if _, err := svc.Finalize(ctx, m.ID, league.Score{Home: 1, Away: 1}); err != nil {
		t.Fatalf("first Finalize: %v", err)
	}
	_, err := svc.Finalize(ctx, m.ID, league.Score{Home: 0, Away: 0})
	if !errors.Is(err, league.ErrConflict) {
		t.Fatalf("second Finalize = %v, want ErrConflict", err)
	}

	stored, _ := s.GetMatch(ctx, m.ID)
	if *stored.Result != (league.Score{Home: 1, Away: 1}) {
		t.Errorf("result changed by rejected finalize: %+v", stored.Result)
	}
	if p := points(t, s, u.ID, m.ID); p == nil || *p != 40 {
		t.Errorf("points changed by rejected finalize: %v", p)
	}
}

func TestFinalizeReverseFinalize(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	m := repotest.Match(t, s, tr.ID, kickoff)
	u := repotest.User(t, s, "bia")
	repotest.Predict(t, s, u.ID, m.ID, 3, 0)
	pub := &fakePublisher{}
	svc := NewService(s, pub, nil, nil, nil)

	if _, err := svc.Finalize(ctx, m.ID, league.Score{Home: 0, Away: 3}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if p := points(t, s, u.ID, m.ID); p == nil || *p != 0 {
		t.Fatalf("points after first finalize = %v, want 0", p)
	}

	reverted, err := svc.Reverse(ctx, m.ID)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if reverted.Finalized || reverted.Result != nil {
		t.Errorf("reverted match = %+v", reverted)
	}
	if p := points(t, s, u.ID, m.ID); p != nil {
		t.Errorf("points after reverse = %d, want nil", *p)
	}

	if _, err := svc.Finalize(ctx, m.ID, league.Score{Home: 3, Away: 0}); err != nil {
		t.Fatalf("Finalize after reverse: %v", err)
	}
	if p := points(t, s, u.ID, m.ID); p == nil || *p != 40 {
		t.Errorf("points after second finalize = %v, want 40", p)
	}

	types := []string{}
	for _, e := range pub.events {
		types = append(types, e.Type)
	}
	want := []string{events.TypeMatchFinalized, events.TypeMatchReverted, events.TypeMatchFinalized}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, types[i], want[i])
		}
	}
	if rev := pub.events[1]; rev.PredictionsCleared != 1 || rev.PredictionsScored != 0 || rev.HomeGoals != nil {
		t.Errorf("reverted event = %+v, want 1 prediction cleared and no score", rev)
	}
	raw, err := json.Marshal(pub.events[1])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"predictions_cleared":1`) || strings.Contains(string(raw), "predictions_scored") {
		t.Errorf("reverted event json = %s", raw)
	}
}

func TestReverseOpenMatchIsNoop(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	m := repotest.Match(t, s, tr.ID, kickoff)
	pub := &fakePublisher{}
	cache := &fakeCache{}
	svc := NewService(s, pub, cache, nil, nil)

	got, err := svc.Reverse(ctx, m.ID)
	if err != nil {
		t.Fatalf("Reverse(open) = %v", err)
	}
	if got.Finalized || got.Result != nil {
		t.Errorf("match = %+v", got)
	}
	if len(pub.events) != 0 || len(cache.invalidated) != 0 {
		t.Errorf("no-op reverse had side effects: events=%v invalidated=%v", pub.events, cache.invalidated)
	}
}

func TestConcurrentFinalizeOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	m := repotest.Match(t, s, tr.ID, kickoff)
	u := repotest.User(t, s, "caio")
	repotest.Predict(t, s, u.ID, m.ID, 1, 0)
	svc := NewService(s, nil, nil, nil, nil)

	scores := []league.Score{{Home: 1, Away: 0}, {Home: 0, Away: 1}, {Home: 2, Away: 2}, {Home: 4, Away: 1}}
	errs := make([]error, len(scores))
	var wg sync.WaitGroup
	for i, sc := range scores {
		wg.Add(1)
		go func(i int, sc league.Score) {
			defer wg.Done()
			_, errs[i] = svc.Finalize(ctx, m.ID, sc)
		}(i, sc)
	}
	wg.Wait()

	var winner = -1
	for i, err := range errs {
		switch {
		case err == nil:
			if winner >= 0 {
				t.Fatalf("both %d and %d finalized the match", winner, i)
			}
			winner = i
		case errors.Is(err, league.ErrConflict):
		default:
			t.Errorf("Finalize[%d] = %v", i, err)
		}
	}
	if winner < 0 {
		t.Fatal("no finalize succeeded")
	}

	stored, _ := s.GetMatch(ctx, m.ID)
	if stored.Result == nil || *stored.Result != scores[winner] {
		t.Errorf("stored result = %v, want winner's %v", stored.Result, scores[winner])
	}
}

func TestFinalizeRollsBackWhenScoringFails(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	m := repotest.Match(t, s, tr.ID, kickoff)
	u := repotest.User(t, s, "davi")
	repotest.Predict(t, s, u.ID, m.ID, 2, 2)
	pub := &fakePublisher{}
	svc := NewService(failingStore{Store: s}, pub, nil, nil, nil)

	if _, err := svc.Finalize(ctx, m.ID, league.Score{Home: 2, Away: 2}); err == nil {
		t.Fatal("Finalize should fail when a prediction cannot be scored")
	}

	stored, _ := s.GetMatch(ctx, m.ID)
	if stored.Finalized || stored.Result != nil {
		t.Errorf("partial finalize persisted: %+v", stored)
	}
	if p := points(t, s, u.ID, m.ID); p != nil {
		t.Errorf("points persisted after rollback: %d", *p)
	}
	if len(pub.events) != 0 {
		t.Errorf("event published for rolled back finalize: %+v", pub.events)
	}
}

func TestFinalizeRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	m := repotest.Match(t, s, tr.ID, kickoff)
	svc := NewService(s, nil, nil, nil, nil)

	if _, err := svc.Finalize(ctx, m.ID, league.Score{Home: -1, Away: 0}); !errors.Is(err, league.ErrInvalidInput) {
		t.Errorf("negative goals = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Finalize(ctx, league.NewID(), league.Score{}); !errors.Is(err, league.ErrNotFound) {
		t.Errorf("unknown match = %v, want ErrNotFound", err)
	}
	if _, err := svc.Reverse(ctx, "nope"); !errors.Is(err, league.ErrNotFound) {
		t.Errorf("malformed id = %v, want ErrNotFound", err)
	}
}

func TestPublishFailureDoesNotUndoFinalize(t *testing.T) {
	ctx := context.Background()
	s := repotest.NewSQLite(t)
	tr := repotest.Tournament(t, s)
	m := repotest.Match(t, s, tr.ID, kickoff)
	svc := NewService(s, &fakePublisher{err: errors.New("broker down")}, nil, nil, nil)

	if _, err := svc.Finalize(ctx, m.ID, league.Score{Home: 1, Away: 2}); err != nil {
		t.Fatalf("Finalize = %v, want success despite publish failure", err)
	}
	stored, _ := s.GetMatch(ctx, m.ID)
	if !stored.Finalized {
		t.Error("match should stay finalized")
	}
}
