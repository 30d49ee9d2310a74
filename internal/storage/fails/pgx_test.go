package fails

import (
	"errors"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueryRepo() *pgxRepo {
	return &pgxRepo{g: goqu.Dialect("postgres")}
}

func TestPGXSaveQuery(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	sql, params, err := newQueryRepo().saveQuery("Moby-Dick_2701", errors.New("listing repo: 502"), at)
	require.NoError(t, err)
	assert.Empty(t, params)
	assert.Equal(t,
		`INSERT INTO "search_fail" ("created_at", "error", "repo") VALUES ('2024-01-02T03:04:05Z', 'listing repo: 502', 'Moby-Dick_2701')`,
		sql)
}

func TestPGXSaveQueryEscapesError(t *testing.T) {
	sql, _, err := newQueryRepo().saveQuery("Bad_1", errors.New("it's broken"), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, sql, `'it''s broken'`)
}

func TestPGXRecentQuery(t *testing.T) {
	sql, params, err := newQueryRepo().recentQuery(2)
	require.NoError(t, err)
	assert.Empty(t, params)
	assert.Equal(t, `SELECT "id", "created_at", "repo", "error" FROM "search_fail" ORDER BY "id" DESC LIMIT 2`, sql)
}

func TestPGXDeleteQuery(t *testing.T) {
	sql, params, err := newQueryRepo().deleteQuery(5)
	require.NoError(t, err)
	assert.Empty(t, params)
	assert.Equal(t, `DELETE FROM "search_fail" WHERE ("id" = 5)`, sql)
}
