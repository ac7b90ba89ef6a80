package repo

import (
	"context"
	"fmt"

	"github.com/radieske/prediction-league/internal/shared/db"
)

// Open conecta no banco do driver configurado ("postgres" ou "sqlite") e garante o schema
func Open(ctx context.Context, driver, postgresDSN, sqlitePath string) (*SQL, error) {
	var s *SQL
	switch driver {
	case "postgres":
		conn, err := db.ConnectPostgres(postgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		s = NewPostgres(conn)
	case "sqlite":
		conn, err := db.OpenSQLite(sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite open: %w", err)
		}
		s = NewSQLite(conn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
