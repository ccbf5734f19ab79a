package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

const createQuestionsSQL = `
CREATE TABLE IF NOT EXISTS questions (
	id            TEXT PRIMARY KEY,
	prompt        TEXT NOT NULL,
	options       TEXT[] NOT NULL,
	correct_index INT NOT NULL,
	difficulty    VARCHAR(20) NOT NULL
)`

const createPlayersSQL = `
CREATE TABLE IF NOT EXISTS players (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	score        INT NOT NULL DEFAULT 0,
	coins        INT NOT NULL DEFAULT 0,
	best_streak  INT NOT NULL DEFAULT 0,
	boosters     INT NOT NULL DEFAULT 0
)`

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.Exec(createQuestionsSQL); err != nil {
				return err
			}
			_, err := db.Exec(createPlayersSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.Exec(`DROP TABLE IF EXISTS players`); err != nil {
				return err
			}
			_, err := db.Exec(`DROP TABLE IF EXISTS questions`)
			return err
		},
	)
}
