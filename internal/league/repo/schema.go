package repo

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS tournaments (
		id                UUID PRIMARY KEY,
		name              TEXT NOT NULL,
		year              INTEGER NOT NULL,
		host_timezone     TEXT NOT NULL,
		group_stage_start TIMESTAMPTZ NOT NULL,
		group_stage_end   TIMESTAMPTZ NOT NULL,
		knockouts_start   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id             BIGSERIAL PRIMARY KEY,
		name           TEXT NOT NULL,
		email          TEXT NOT NULL UNIQUE,
		password_hash  TEXT NOT NULL,
		timezone       TEXT NOT NULL DEFAULT 'UTC',
		is_admin       BOOLEAN NOT NULL DEFAULT FALSE,
		payment_status TEXT NOT NULL DEFAULT 'UNPAID',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id                UUID PRIMARY KEY,
		tournament_id     UUID NOT NULL REFERENCES tournaments(id),
		stage             TEXT NOT NULL,
		group_name        TEXT,
		home_team         TEXT NOT NULL,
		away_team         TEXT NOT NULL,
		kickoff_utc       TIMESTAMPTZ NOT NULL,
		venue             TEXT,
		result_home_goals INTEGER CHECK (result_home_goals >= 0),
		result_away_goals INTEGER CHECK (result_away_goals >= 0),
		result_finalized  BOOLEAN NOT NULL DEFAULT FALSE,
		CHECK ((result_home_goals IS NULL) = (result_away_goals IS NULL)),
		CHECK (NOT result_finalized OR result_home_goals IS NOT NULL)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_tournament ON matches(tournament_id)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id                   BIGSERIAL PRIMARY KEY,
		user_id              BIGINT NOT NULL REFERENCES users(id),
		match_id             UUID NOT NULL REFERENCES matches(id),
		predicted_home_goals INTEGER NOT NULL CHECK (predicted_home_goals >= 0),
		predicted_away_goals INTEGER NOT NULL CHECK (predicted_away_goals >= 0),
		points               INTEGER,
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, match_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_match ON predictions(match_id)`,
	`CREATE TABLE IF NOT EXISTS prediction_history (
		id                   BIGSERIAL PRIMARY KEY,
		user_id              BIGINT NOT NULL REFERENCES users(id),
		match_id             UUID NOT NULL REFERENCES matches(id),
		predicted_home_goals INTEGER NOT NULL,
		predicted_away_goals INTEGER NOT NULL,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prediction_history_user_match ON prediction_history(user_id, match_id)`,
}

// timestamps ficam como TEXT em formato fixo UTC (ver timeLayout), o que mantém a ordenação
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS tournaments (
		id                TEXT PRIMARY KEY,
		name              TEXT NOT NULL,
		year              INTEGER NOT NULL,
		host_timezone     TEXT NOT NULL,
		group_stage_start TEXT NOT NULL,
		group_stage_end   TEXT NOT NULL,
		knockouts_start   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL,
		email          TEXT NOT NULL UNIQUE,
		password_hash  TEXT NOT NULL,
		timezone       TEXT NOT NULL DEFAULT 'UTC',
		is_admin       INTEGER NOT NULL DEFAULT 0,
		payment_status TEXT NOT NULL DEFAULT 'UNPAID',
		created_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id                TEXT PRIMARY KEY,
		tournament_id     TEXT NOT NULL REFERENCES tournaments(id),
		stage             TEXT NOT NULL,
		group_name        TEXT,
		home_team         TEXT NOT NULL,
		away_team         TEXT NOT NULL,
		kickoff_utc       TEXT NOT NULL,
		venue             TEXT,
		result_home_goals INTEGER CHECK (result_home_goals >= 0),
		result_away_goals INTEGER CHECK (result_away_goals >= 0),
		result_finalized  INTEGER NOT NULL DEFAULT 0,
		CHECK ((result_home_goals IS NULL) = (result_away_goals IS NULL)),
		CHECK (NOT result_finalized OR result_home_goals IS NOT NULL)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_tournament ON matches(tournament_id)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id              INTEGER NOT NULL REFERENCES users(id),
		match_id             TEXT NOT NULL REFERENCES matches(id),
		predicted_home_goals INTEGER NOT NULL CHECK (predicted_home_goals >= 0),
		predicted_away_goals INTEGER NOT NULL CHECK (predicted_away_goals >= 0),
		points               INTEGER,
		updated_at           TEXT NOT NULL,
		UNIQUE (user_id, match_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_match ON predictions(match_id)`,
	`CREATE TABLE IF NOT EXISTS prediction_history (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id              INTEGER NOT NULL REFERENCES users(id),
		match_id             TEXT NOT NULL REFERENCES matches(id),
		predicted_home_goals INTEGER NOT NULL,
		predicted_away_goals INTEGER NOT NULL,
		created_at           TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prediction_history_user_match ON prediction_history(user_id, match_id)`,
}
