package repository

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/tern/v2/migrate"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	// migrationLockID is "teadia" in ASCII hex.
	migrationLockID             = 0x746561646961
	migrationLockReleaseTimeout = 5 * time.Second
	versionTable                = "public.schema_version"
)

// MigratePostgres brings the schema to the latest version. Concurrent callers
// are serialized with an advisory lock.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("repository.Migrate, acquire connection error: %w", err)
	}
	defer conn.Release()

	unlock, err := migrationLock(ctx, conn.Conn())
	if err != nil {
		return err
	}
	defer unlock()

	migrationFS, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("repository.Migrate, read migrations error: %w", err)
	}
	migrator, err := migrate.NewMigrator(ctx, conn.Conn(), versionTable)
	if err != nil {
		return fmt.Errorf("repository.Migrate, create migrator error: %w", err)
	}
	if err = migrator.LoadMigrations(migrationFS); err != nil {
		return fmt.Errorf("repository.Migrate, load migrations error: %w", err)
	}

	current, err := migrator.GetCurrentVersion(ctx)
	if err != nil {
		logrus.Debugf("repository.Migrate, no schema version yet: %v", err)
	} else {
		logrus.Infof("repository.Migrate, current schema version %d of %d", current, len(migrator.Migrations))
	}
	if err = migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("repository.Migrate, migrate error: %w", err)
	}
	return nil
}

func migrationLock(ctx context.Context, conn *pgx.Conn) (func(), error) {
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return nil, fmt.Errorf("repository.Migrate, acquire migration lock error: %w", err)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), migrationLockReleaseTimeout)
		defer cancel()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			logrus.Errorf("repository.Migrate, release migration lock error: %v", err)
		}
	}, nil
}
