package fails

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/georgysavva/scany/v2/sqlscan"
	_ "modernc.org/sqlite"
)

// Timestamps are kept as unix milliseconds; sqlite has no native time type.
const sqliteSchema = `CREATE TABLE IF NOT EXISTS search_fail (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at INTEGER NOT NULL,
	repo       TEXT NOT NULL,
	error      TEXT NOT NULL
)`

// OpenSQLite opens (creating if needed) the sqlite database at path
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	return db, nil
}

func NewSQLRepository(db *sql.DB, l *slog.Logger) Repository {
	return &sqlRepo{db: db, g: goqu.Dialect("sqlite3"), l: l}
}

type sqlRepo struct {
	db *sql.DB
	g  goqu.DialectWrapper
	l  *slog.Logger
}

type sqlRecord struct {
	Id        uint64 `db:"id"`
	CreatedAt int64  `db:"created_at"`
	Repo      string `db:"repo"`
	Error     string `db:"error"`
}

func (s *sqlRepo) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)
	return err
}

func (s *sqlRepo) Save(ctx context.Context, repo string, err error) error {
	query, params, err_ := s.g.Insert(table).
		Rows(goqu.Record{
			"created_at": time.Now().UnixMilli(),
			"repo":       repo,
			"error":      err.Error(),
		}).
		ToSQL()
	if err_ != nil {
		return err_
	}

	_, err_ = s.db.ExecContext(ctx, query, params...)
	return err_
}

func (s *sqlRepo) Recent(ctx context.Context, limit uint) ([]*Record, error) {
	query, params, err := s.g.From(table).
		Select("id", "created_at", "repo", "error").
		Order(goqu.C("id").Desc()).
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var rows []sqlRecord

	err = sqlscan.Select(ctx, s.db, &rows, query, params...)
	if err != nil {
		return nil, err
	}

	ret := make([]*Record, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, &Record{
			Id:        row.Id,
			CreatedAt: time.UnixMilli(row.CreatedAt),
			Repo:      row.Repo,
			Error:     row.Error,
		})
	}

	return ret, nil
}

func (s *sqlRepo) DeleteById(ctx context.Context, id uint64) error {
	query, params, err := s.g.Delete(table).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, params...)
	return err
}
