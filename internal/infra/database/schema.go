package database

import (
	"context"
	"database/sql"
	"fmt"
)

const createTheatersTable = `CREATE TABLE IF NOT EXISTS theaters (
	id         BIGSERIAL PRIMARY KEY,
	cinema_id  VARCHAR(64) NOT NULL,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT theaters_cinema_id_key UNIQUE (cinema_id)
)`

const createAlertsTable = `CREATE TABLE IF NOT EXISTS alerts (
	id           BIGSERIAL PRIMARY KEY,
	owner_id     BIGINT NOT NULL,
	film_id      VARCHAR(64) NOT NULL,
	theater_id   BIGINT NOT NULL REFERENCES theaters(id),
	cinema_id    VARCHAR(64) NOT NULL CHECK (cinema_id <> ''),
	film_title   TEXT NOT NULL,
	theater_name TEXT NOT NULL,
	player_id    TEXT NOT NULL CHECK (player_id <> ''),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createAlertsOwnerIndex = `CREATE INDEX IF NOT EXISTS alerts_owner_id_idx ON alerts (owner_id)`

// InitialiseSchema creates the tables the bot needs if they are missing.
func InitialiseSchema(ctx context.Context, db *sql.DB) error {
	steps := []struct {
		name string
		stmt string
	}{
		{"theaters table", createTheatersTable},
		{"alerts table", createAlertsTable},
		{"alerts owner index", createAlertsOwnerIndex},
	}
	for _, s := range steps {
		if _, err := db.ExecContext(ctx, s.stmt); err != nil {
			return fmt.Errorf("creating %s: %w", s.name, err)
		}
	}
	return nil
}
