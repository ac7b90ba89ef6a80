// Package seed carrega torneios e partidas de um arquivo YAML para o store.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/radieske/prediction-league/internal/league"
)

type MatchFixture struct {
	ID         string    `yaml:"id"`
	Stage      string    `yaml:"stage"`
	Group      string    `yaml:"group"`
	HomeTeam   string    `yaml:"home_team"`
	AwayTeam   string    `yaml:"away_team"`
	KickoffUTC time.Time `yaml:"kickoff_utc"`
	Venue      string    `yaml:"venue"`
}

type TournamentFixture struct {
	ID              string         `yaml:"id"`
	Name            string         `yaml:"name"`
	Year            int            `yaml:"year"`
	HostTimezone    string         `yaml:"host_timezone"`
	GroupStageStart time.Time      `yaml:"group_stage_start"`
	GroupStageEnd   time.Time      `yaml:"group_stage_end"`
	KnockoutsStart  time.Time      `yaml:"knockouts_start"`
	Matches         []MatchFixture `yaml:"matches"`
}

type Fixture struct {
	Tournaments []TournamentFixture `yaml:"tournaments"`
}

// Writer é o subconjunto do store usado pelo seed
type Writer interface {
	CreateTournament(ctx context.Context, t league.Tournament) error
	CreateMatch(ctx context.Context, m league.Match) error
}

// Load lê e valida o arquivo de fixture
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return Fixture{}, err
	}
	return f, nil
}

func (f Fixture) validate() error {
	seen := map[string]bool{}
	for _, t := range f.Tournaments {
		if err := league.CheckID("tournament", t.ID); err != nil {
			return fmt.Errorf("%w: tournament %q needs a uuid id", league.ErrInvalidInput, t.Name)
		}
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%w: tournament %s without name", league.ErrInvalidInput, t.ID)
		}
		if _, err := time.LoadLocation(t.HostTimezone); err != nil {
			return fmt.Errorf("%w: tournament %s: unknown timezone %q", league.ErrInvalidInput, t.ID, t.HostTimezone)
		}
		for _, m := range t.Matches {
			if err := league.CheckID("match", m.ID); err != nil {
				return fmt.Errorf("%w: match %s x %s needs a uuid id", league.ErrInvalidInput, m.HomeTeam, m.AwayTeam)
			}
			if seen[m.ID] {
				return fmt.Errorf("%w: duplicated match id %s", league.ErrInvalidInput, m.ID)
			}
			seen[m.ID] = true
			if !league.Stage(m.Stage).Valid() {
				return fmt.Errorf("%w: match %s: unknown stage %q", league.ErrInvalidInput, m.ID, m.Stage)
			}
			if m.HomeTeam == "" || m.AwayTeam == "" {
				return fmt.Errorf("%w: match %s: both teams are required", league.ErrInvalidInput, m.ID)
			}
			if m.KickoffUTC.IsZero() {
				return fmt.Errorf("%w: match %s: kickoff_utc is required", league.ErrInvalidInput, m.ID)
			}
		}
	}
	return nil
}

// Apply grava o fixture. É idempotente: torneios existentes são mantidos e partidas
// existentes só têm os dados de agenda atualizados (resultado e palpites não são tocados).
func Apply(ctx context.Context, w Writer, f Fixture) (tournaments, matches int, err error) {
	for _, t := range f.Tournaments {
		err := w.CreateTournament(ctx, league.Tournament{
			ID:              t.ID,
			Name:            t.Name,
			Year:            t.Year,
			HostTimezone:    t.HostTimezone,
			GroupStageStart: t.GroupStageStart.UTC(),
			GroupStageEnd:   t.GroupStageEnd.UTC(),
			KnockoutsStart:  t.KnockoutsStart.UTC(),
		})
		if err != nil {
			return tournaments, matches, fmt.Errorf("tournament %s: %w", t.ID, err)
		}
		tournaments++

		for _, m := range t.Matches {
			err := w.CreateMatch(ctx, league.Match{
				ID:           m.ID,
				TournamentID: t.ID,
				Stage:        league.Stage(m.Stage),
				GroupName:    optional(m.Group),
				HomeTeam:     m.HomeTeam,
				AwayTeam:     m.AwayTeam,
				KickoffUTC:   m.KickoffUTC.UTC(),
				Venue:        optional(m.Venue),
			})
			if err != nil {
				return tournaments, matches, fmt.Errorf("match %s: %w", m.ID, err)
			}
			matches++
		}
	}
	return tournaments, matches, nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
