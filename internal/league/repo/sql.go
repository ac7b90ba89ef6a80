package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/radieske/prediction-league/internal/league"
)

// SQL implementa Store sobre database/sql (Postgres ou SQLite, conforme o dialeto)
type SQL struct {
	db *sql.DB
	d  dialect
}

// NewPostgres retorna o store de produção; locks de linha via FOR UPDATE / FOR SHARE
func NewPostgres(db *sql.DB) *SQL { return &SQL{db: db, d: postgresDialect} }

// NewSQLite retorna o store embarcado. Espera um *sql.DB com uma única conexão
// (db.OpenSQLite), o que serializa as transações.
func NewSQLite(db *sql.DB) *SQL { return &SQL{db: db, d: sqliteDialect} }

// Dialect retorna "postgres" ou "sqlite"
func (s *SQL) Dialect() string { return s.d.name }

// EnsureSchema cria as tabelas caso não existam
func (s *SQL) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.d.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema (%s): %w", s.d.name, err)
		}
	}
	return nil
}

func (s *SQL) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQL) Close() error { return s.db.Close() }

// WithTx abre a transação, executa fn e faz commit; em erro o defer desfaz tudo
func (s *SQL) WithTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{tx: tx, d: s.d}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// querier é o que *sql.DB e *sql.Tx têm em comum
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const matchColumns = `id, tournament_id, stage, group_name, home_team, away_team, kickoff_utc,
	venue, result_home_goals, result_away_goals, result_finalized`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(r rowScanner) (league.Match, error) {
	var (
		m          league.Match
		kickoff    dbTime
		home, away *int
	)
	if err := r.Scan(&m.ID, &m.TournamentID, &m.Stage, &m.GroupName, &m.HomeTeam, &m.AwayTeam,
		&kickoff, &m.Venue, &home, &away, &m.Finalized); err != nil {
		return league.Match{}, err
	}
	m.KickoffUTC = kickoff.Time
	if home != nil && away != nil {
		m.Result = &league.Score{Home: *home, Away: *away}
	}
	return m, nil
}

func getMatch(ctx context.Context, q querier, d dialect, matchID string, mode LockMode) (league.Match, error) {
	query := d.rebind(`SELECT `+matchColumns+` FROM matches WHERE id = ?`) + d.lockClause(mode)
	m, err := scanMatch(q.QueryRowContext(ctx, query, matchID))
	if errors.Is(err, sql.ErrNoRows) {
		return league.Match{}, fmt.Errorf("match %s: %w", matchID, league.ErrNotFound)
	}
	if err != nil {
		return league.Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

func queryMatches(ctx context.Context, q querier, query string, args ...any) ([]league.Match, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []league.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const predictionColumns = `id, user_id, match_id, predicted_home_goals, predicted_away_goals, points, updated_at`

func scanPrediction(r rowScanner) (league.Prediction, error) {
	var (
		p       league.Prediction
		updated dbTime
	)
	if err := r.Scan(&p.ID, &p.UserID, &p.MatchID, &p.Predicted.Home, &p.Predicted.Away, &p.Points, &updated); err != nil {
		return league.Prediction{}, err
	}
	p.UpdatedAt = updated.Time
	return p, nil
}

// queryPredictions lê tudo para memória antes de retornar: o lib/pq não aceita
// outra query na mesma conexão com rows abertos.
func queryPredictions(ctx context.Context, q querier, query string, args ...any) ([]league.Prediction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []league.Prediction{}
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQL) ListTournaments(ctx context.Context) ([]league.Tournament, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, year, host_timezone, group_stage_start, group_stage_end, knockouts_start
		FROM tournaments
		ORDER BY year DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	defer rows.Close()
	out := []league.Tournament{}
	for rows.Next() {
		var (
			t                league.Tournament
			gsStart, gsEnd   dbTime
			knockoutsStartAt dbTime
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Year, &t.HostTimezone, &gsStart, &gsEnd, &knockoutsStartAt); err != nil {
			return nil, fmt.Errorf("scan tournament: %w", err)
		}
		t.GroupStageStart, t.GroupStageEnd, t.KnockoutsStart = gsStart.Time, gsEnd.Time, knockoutsStartAt.Time
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQL) ListMatches(ctx context.Context, tournamentID string) ([]league.Match, error) {
	out, err := queryMatches(ctx, s.db,
		s.d.rebind(`SELECT `+matchColumns+` FROM matches WHERE tournament_id = ? ORDER BY kickoff_utc ASC, id`),
		tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return out, nil
}

func (s *SQL) GetMatch(ctx context.Context, matchID string) (league.Match, error) {
	return getMatch(ctx, s.db, s.d, matchID, 0)
}

func (s *SQL) FinalizedMatches(ctx context.Context, tournamentID string) ([]league.Match, error) {
	out, err := queryMatches(ctx, s.db,
		s.d.rebind(`SELECT `+matchColumns+` FROM matches
			WHERE tournament_id = ? AND result_finalized = TRUE
			ORDER BY kickoff_utc ASC, id`),
		tournamentID)
	if err != nil {
		return nil, fmt.Errorf("finalized matches: %w", err)
	}
	return out, nil
}

func (s *SQL) PredictionsForMatches(ctx context.Context, matchIDs []string) ([]league.Prediction, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(matchIDs))
	for i, id := range matchIDs {
		args[i] = id
	}
	out, err := queryPredictions(ctx, s.db,
		s.d.rebind(`SELECT `+predictionColumns+` FROM predictions
			WHERE match_id IN (`+placeholders(len(args))+`)
			ORDER BY user_id, match_id`),
		args...)
	if err != nil {
		return nil, fmt.Errorf("predictions for matches: %w", err)
	}
	return out, nil
}

func (s *SQL) UserPredictions(ctx context.Context, userID int64, tournamentID string) ([]UserPrediction, error) {
	rows, err := s.db.QueryContext(ctx, s.d.rebind(`
		SELECT p.id, p.user_id, p.match_id, p.predicted_home_goals, p.predicted_away_goals, p.points, p.updated_at,
		       m.result_home_goals, m.result_away_goals, m.result_finalized
		FROM predictions p
		JOIN matches m ON m.id = p.match_id
		WHERE p.user_id = ? AND m.tournament_id = ?
		ORDER BY m.kickoff_utc ASC, m.id`), userID, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("user predictions: %w", err)
	}
	defer rows.Close()
	out := []UserPrediction{}
	for rows.Next() {
		var (
			up         UserPrediction
			updated    dbTime
			home, away *int
		)
		p := &up.Prediction
		if err := rows.Scan(&p.ID, &p.UserID, &p.MatchID, &p.Predicted.Home, &p.Predicted.Away, &p.Points, &updated,
			&home, &away, &up.Finalized); err != nil {
			return nil, fmt.Errorf("scan user prediction: %w", err)
		}
		p.UpdatedAt = updated.Time
		if home != nil && away != nil {
			up.Result = &league.Score{Home: *home, Away: *away}
		}
		out = append(out, up)
	}
	return out, rows.Err()
}

func (s *SQL) History(ctx context.Context, userID int64, matchID string) ([]league.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.d.rebind(`
		SELECT id, user_id, match_id, predicted_home_goals, predicted_away_goals, created_at
		FROM prediction_history
		WHERE user_id = ? AND match_id = ?
		ORDER BY id`), userID, matchID)
	if err != nil {
		return nil, fmt.Errorf("prediction history: %w", err)
	}
	defer rows.Close()
	out := []league.HistoryEntry{}
	for rows.Next() {
		var (
			e       league.HistoryEntry
			created dbTime
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.MatchID, &e.Predicted.Home, &e.Predicted.Away, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.CreatedAt = created.Time
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQL) CreateUser(ctx context.Context, u league.User) (league.User, error) {
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}
	err := s.db.QueryRowContext(ctx, s.d.rebind(`
		INSERT INTO users (name, email, password_hash, timezone, is_admin)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, payment_status`),
		u.Name, u.Email, u.PasswordHash, u.Timezone, u.IsAdmin,
	).Scan(&u.ID, &u.PaymentStatus)
	if err != nil {
		if s.d.isUnique(err) {
			return league.User{}, fmt.Errorf("email already in use: %w", league.ErrConflict)
		}
		return league.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

const userColumns = `id, name, email, password_hash, timezone, is_admin, payment_status`

func (s *SQL) getUser(ctx context.Context, where string, arg any) (league.User, error) {
	var u league.User
	err := s.db.QueryRowContext(ctx, s.d.rebind(`SELECT `+userColumns+` FROM users WHERE `+where), arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Timezone, &u.IsAdmin, &u.PaymentStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return league.User{}, fmt.Errorf("user: %w", league.ErrNotFound)
	}
	if err != nil {
		return league.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *SQL) UserByEmail(ctx context.Context, email string) (league.User, error) {
	return s.getUser(ctx, `lower(email) = lower(?)`, email)
}

func (s *SQL) UserByID(ctx context.Context, id int64) (league.User, error) {
	return s.getUser(ctx, `id = ?`, id)
}

func (s *SQL) UserNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		s.d.rebind(`SELECT id, name FROM users WHERE id IN (`+placeholders(len(args))+`)`), args...)
	if err != nil {
		return nil, fmt.Errorf("user names: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan user name: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

func (s *SQL) CreateTournament(ctx context.Context, t league.Tournament) error {
	_, err := s.db.ExecContext(ctx, s.d.rebind(`
		INSERT INTO tournaments (id, name, year, host_timezone, group_stage_start, group_stage_end, knockouts_start)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`),
		t.ID, t.Name, t.Year, t.HostTimezone,
		formatTime(t.GroupStageStart), formatTime(t.GroupStageEnd), formatTime(t.KnockoutsStart))
	if err != nil {
		return fmt.Errorf("create tournament: %w", err)
	}
	return nil
}

// CreateMatch insere uma partida aberta; reexecutar com o mesmo id só atualiza os dados
// de agenda e nunca toca em resultado.
func (s *SQL) CreateMatch(ctx context.Context, m league.Match) error {
	_, err := s.db.ExecContext(ctx, s.d.rebind(`
		INSERT INTO matches (id, tournament_id, stage, group_name, home_team, away_team, kickoff_utc, venue)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
		  stage       = excluded.stage,
		  group_name  = excluded.group_name,
		  home_team   = excluded.home_team,
		  away_team   = excluded.away_team,
		  kickoff_utc = excluded.kickoff_utc,
		  venue       = excluded.venue`),
		m.ID, m.TournamentID, string(m.Stage), m.GroupName, m.HomeTeam, m.AwayTeam, formatTime(m.KickoffUTC), m.Venue)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// sqlTx implementa Tx; todas as operações passam pela mesma *sql.Tx
type sqlTx struct {
	tx *sql.Tx
	d  dialect
}

func (t *sqlTx) LockMatch(ctx context.Context, matchID string, mode LockMode) (league.Match, error) {
	return getMatch(ctx, t.tx, t.d, matchID, mode)
}

func (t *sqlTx) SetResult(ctx context.Context, matchID string, result *league.Score) error {
	var home, away any
	if result != nil {
		home, away = result.Home, result.Away
	}
	res, err := t.tx.ExecContext(ctx, t.d.rebind(`
		UPDATE matches
		SET result_home_goals = ?, result_away_goals = ?, result_finalized = ?
		WHERE id = ?`),
		home, away, result != nil, matchID)
	if err != nil {
		return fmt.Errorf("set result: %w", err)
	}
	return expectOne(res, "match "+matchID)
}

func (t *sqlTx) PredictionsForMatch(ctx context.Context, matchID string) ([]league.Prediction, error) {
	out, err := queryPredictions(ctx, t.tx,
		t.d.rebind(`SELECT `+predictionColumns+` FROM predictions WHERE match_id = ? ORDER BY id`), matchID)
	if err != nil {
		return nil, fmt.Errorf("predictions for match: %w", err)
	}
	return out, nil
}

func (t *sqlTx) SetPoints(ctx context.Context, predictionID int64, points int) error {
	res, err := t.tx.ExecContext(ctx, t.d.rebind(`UPDATE predictions SET points = ? WHERE id = ?`), points, predictionID)
	if err != nil {
		return fmt.Errorf("set points: %w", err)
	}
	return expectOne(res, fmt.Sprintf("prediction %d", predictionID))
}

func (t *sqlTx) ClearPoints(ctx context.Context, matchID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, t.d.rebind(`UPDATE predictions SET points = NULL WHERE match_id = ?`), matchID)
	if err != nil {
		return 0, fmt.Errorf("clear points: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear points: %w", err)
	}
	return n, nil
}

func (t *sqlTx) AppendHistory(ctx context.Context, e league.HistoryEntry) error {
	_, err := t.tx.ExecContext(ctx, t.d.rebind(`
		INSERT INTO prediction_history (user_id, match_id, predicted_home_goals, predicted_away_goals, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		e.UserID, e.MatchID, e.Predicted.Home, e.Predicted.Away, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// UpsertPrediction usa ON CONFLICT para não correr contra outro insert do mesmo (user, match)
func (t *sqlTx) UpsertPrediction(ctx context.Context, p league.Prediction) error {
	_, err := t.tx.ExecContext(ctx, t.d.rebind(`
		INSERT INTO predictions (user_id, match_id, predicted_home_goals, predicted_away_goals, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, match_id) DO UPDATE SET
		  predicted_home_goals = excluded.predicted_home_goals,
		  predicted_away_goals = excluded.predicted_away_goals,
		  updated_at           = excluded.updated_at`),
		p.UserID, p.MatchID, p.Predicted.Home, p.Predicted.Away, formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert prediction: %w", err)
	}
	return nil
}

func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, league.ErrNotFound)
	}
	return nil
}

// timeLayout tem largura fixa para que a ordenação textual no SQLite siga a cronológica
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

// dbTime aceita tanto time.Time (lib/pq) quanto texto (SQLite)
type dbTime struct{ time.Time }

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	}
	return fmt.Errorf("unsupported time value %T", src)
}

func (t *dbTime) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999Z07:00", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("parse time %q", s)
}
