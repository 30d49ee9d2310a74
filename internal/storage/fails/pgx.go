package fails

import (
	"context"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgxSchema = `CREATE TABLE IF NOT EXISTS search_fail (
	id         BIGSERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	repo       TEXT NOT NULL,
	error      TEXT NOT NULL
)`

func NewPGXRepository(pg *pgxpool.Pool, l *slog.Logger) Repository {
	return &pgxRepo{pg: pg, g: goqu.Dialect("postgres"), l: l}
}

type pgxRepo struct {
	pg *pgxpool.Pool
	g  goqu.DialectWrapper
	l  *slog.Logger
}

type pgxRecord struct {
	Id        uint64    `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	Repo      string    `db:"repo"`
	Error     string    `db:"error"`
}

func (p *pgxRepo) Migrate(ctx context.Context) error {
	_, err := p.pg.Exec(ctx, pgxSchema)
	return err
}

func (p *pgxRepo) Save(ctx context.Context, repo string, err error) error {
	sql, params, err_ := p.saveQuery(repo, err, time.Now())
	if err_ != nil {
		return err_
	}

	_, err_ = p.pg.Exec(ctx, sql, params...)
	return err_
}

func (p *pgxRepo) saveQuery(repo string, err error, at time.Time) (string, []interface{}, error) {
	return p.g.Insert(table).
		Rows(goqu.Record{
			"created_at": at,
			"repo":       repo,
			"error":      err.Error(),
		}).
		ToSQL()
}

func (p *pgxRepo) Recent(ctx context.Context, limit uint) ([]*Record, error) {
	sql, params, err := p.recentQuery(limit)
	if err != nil {
		return nil, err
	}

	var rows []pgxRecord

	err = pgxscan.Select(ctx, p.pg, &rows, sql, params...)
	if err != nil {
		return nil, err
	}

	ret := make([]*Record, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, &Record{
			Id:        row.Id,
			CreatedAt: row.CreatedAt,
			Repo:      row.Repo,
			Error:     row.Error,
		})
	}

	return ret, nil
}

func (p *pgxRepo) recentQuery(limit uint) (string, []interface{}, error) {
	return p.g.From(table).
		Select("id", "created_at", "repo", "error").
		Order(goqu.C("id").Desc()).
		Limit(limit).
		ToSQL()
}

func (p *pgxRepo) DeleteById(ctx context.Context, id uint64) error {
	sql, params, err := p.deleteQuery(id)
	if err != nil {
		return err
	}

	_, err = p.pg.Exec(ctx, sql, params...)
	return err
}

func (p *pgxRepo) deleteQuery(id uint64) (string, []interface{}, error) {
	return p.g.Delete(table).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
}
