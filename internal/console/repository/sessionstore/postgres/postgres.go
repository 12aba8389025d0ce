package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/Leopold1975/gis_console/internal/console/repository/sessionstore"
	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/Leopold1975/gis_console/internal/pkg/pgtools"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

const table = "session_entries"

type SessionStore struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresDB) (SessionStore, error) {
	db, err := pgtools.Connect(ctx, cfg.ConnString())
	if err != nil {
		return SessionStore{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg, migrations, "migrations"); err != nil {
		db.Close()

		return SessionStore{}, fmt.Errorf("apply migration error: %w", err)
	}

	return SessionStore{
		db: db,
	}, nil
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (ss SessionStore) Get(ctx context.Context, profile, key string) (string, error) {
	query, args, err := psql().Select("entry_value").
		From(table).
		Where(squirrel.Eq{"profile_id": profile, "entry_key": key}).ToSql()
	if err != nil {
		return "", fmt.Errorf("to sql error: %w", err)
	}

	var v string

	if err := ss.db.QueryRow(ctx, query, args...).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", sessionstore.ErrNotFound
		}

		return "", fmt.Errorf("scan error: %w", err)
	}

	return v, nil
}

func (ss SessionStore) Set(ctx context.Context, profile, key, value string) error {
	query, args, err := psql().Insert(table).
		Columns("profile_id", "entry_key", "entry_value").
		Values(profile, key, value).
		Suffix("ON CONFLICT (profile_id, entry_key) DO UPDATE SET entry_value = EXCLUDED.entry_value, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err := ss.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

// Delete removes keys in one transaction so a profile never keeps half a session.
func (ss SessionStore) Delete(ctx context.Context, profile string, keys ...string) (err error) { //nolint:nonamedreturns
	if len(keys) == 0 {
		return nil
	}

	tx, err := ss.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete")
	}()

	query, args, err := psql().Delete(table).
		Where(squirrel.Eq{"profile_id": profile, "entry_key": keys}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func (ss SessionStore) Shutdown(context.Context) error {
	ss.db.Close()

	return nil
}
