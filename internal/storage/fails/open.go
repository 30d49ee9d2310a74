package fails

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"library/internal/logger"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open picks the backend from dsn: postgres:// and postgresql:// URLs go to pgx,
// anything else is a sqlite path (an optional "sqlite:" prefix is stripped).
// The schema is created when missing.
func Open(ctx context.Context, dsn string, l *slog.Logger) (Repository, io.Closer, error) {
	var (
		repo   Repository
		closer io.Closer
	)

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		cfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing postgres DSN: %w", err)
		}

		cfg.ConnConfig.Tracer = logger.NewPGXTracer()

		pg, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("creating postgres pool: %w", err)
		}

		repo = NewPGXRepository(pg, l)
		closer = closerFunc(func() error {
			pg.Close()
			return nil
		})
	} else {
		db, err := OpenSQLite(strings.TrimPrefix(dsn, "sqlite:"))
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite database: %w", err)
		}

		repo = NewSQLRepository(db, l)
		closer = db
	}

	if err := repo.Migrate(ctx); err != nil {
		_ = closer.Close()
		return nil, nil, fmt.Errorf("creating failure journal schema: %w", err)
	}

	return repo, closer, nil
}
