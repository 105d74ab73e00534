package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed sql/*.sql
var embedMigrations embed.FS

const migrationDir = "sql"

// Runner применяет встроенную схему не больше одного раза за процесс
type Runner struct {
	db    *sql.DB
	apply func(ctx context.Context, db *sql.DB) error

	once sync.Once
	err  error
}

// NewRunner создает Runner для встроенных миграций goose
func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db, apply: up}
}

// Ensure создает объекты схемы, если их нет. Параллельные вызовы ждут первый
// запуск и получают его результат, последующие берут сохраненный
func (r *Runner) Ensure(ctx context.Context) error {
	r.once.Do(func() {
		r.err = r.apply(ctx, r.db)
	})
	return r.err
}

func up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrations: set dialect: %w", err)
	}

	log.Info().Str("dir", migrationDir).Msg("applying schema migrations")
	if err := goose.UpContext(ctx, db, migrationDir); err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}
