package gitenberg

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library/internal/library"
	"library/internal/types"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type capturedRequest struct {
	query  url.Values
	header http.Header
}

func (c *capturedRequest) BasicAuth() (string, string, bool) {
	r := http.Request{Header: c.header}
	return r.BasicAuth()
}

func newTestAPI(t *testing.T) (*httptest.Server, *capturedRequest) {
	t.Helper()

	last := &capturedRequest{}
	mux := http.NewServeMux()
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		last.query = r.URL.Query()
		last.header = r.Header.Clone()
		writeJSON(w, map[string]any{
			"total_count":        1,
			"incomplete_results": false,
			"items": []map[string]any{{
				"name":        "Moby-Dick_2701",
				"full_name":   "GITenberg/Moby-Dick_2701",
				"description": "Moby Dick; Or, The Whale",
				"size":        4096,
			}},
		})
	})
	mux.HandleFunc("/repos/GITenberg/Moby-Dick_2701/contents/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"name": "2701-h", "type": "dir"},
			{"name": "2701.txt", "type": "file", "download_url": "https://raw.example/2701.txt"},
		})
	})
	mux.HandleFunc("/repos/GITenberg/Moby-Dick_2701", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"name":      "Moby-Dick_2701",
			"full_name": "GITenberg/Moby-Dick_2701",
			"size":      4096,
		})
	})
	mux.HandleFunc("/users/gitenberg", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"login": "GITenberg", "name": "GITenberg"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, last
}

func TestSearchRepositories(t *testing.T) {
	srv, last := newTestAPI(t)

	c, err := NewClient(context.Background(), srv.Client(), Credentials{Token: "secret"}, srv.URL, nil)
	require.NoError(t, err)

	repos, err := c.SearchRepositories(context.Background(), library.Query("moby", "GITenberg"))
	require.NoError(t, err)

	assert.Equal(t, []types.RepoMeta{{
		Name:        "Moby-Dick_2701",
		Description: "Moby Dick; Or, The Whale",
		FullName:    "GITenberg/Moby-Dick_2701",
		Size:        4096,
	}}, repos)
	assert.Equal(t, "moby user:GITenberg", last.query.Get("q"))
	assert.Equal(t, "Bearer secret", last.header.Get("Authorization"))
}

func TestBasicAuthCredentials(t *testing.T) {
	srv, last := newTestAPI(t)

	c, err := NewClient(context.Background(), srv.Client(), Credentials{ClientID: "id", ClientSecret: "sec"}, srv.URL, nil)
	require.NoError(t, err)

	_, err = c.SearchRepositories(context.Background(), "moby")
	require.NoError(t, err)

	user, pass, ok := last.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "id", user)
	assert.Equal(t, "sec", pass)
}

func TestListContents(t *testing.T) {
	srv, _ := newTestAPI(t)

	c, err := NewClient(context.Background(), srv.Client(), Credentials{}, srv.URL, nil)
	require.NoError(t, err)

	items, err := c.ListContents(context.Background(), "GITenberg/Moby-Dick_2701")
	require.NoError(t, err)

	assert.Equal(t, []types.ContentItem{
		{Name: "2701-h", Type: types.ItemTypeDir},
		{Name: "2701.txt", Type: types.ItemTypeFile, DownloadURL: "https://raw.example/2701.txt"},
	}, items)

	_, err = c.ListContents(context.Background(), "no-slash")
	assert.Error(t, err)
}

func TestGetRepository(t *testing.T) {
	srv, _ := newTestAPI(t)

	c, err := NewClient(context.Background(), srv.Client(), Credentials{}, srv.URL, nil)
	require.NoError(t, err)

	meta, err := c.GetRepository(context.Background(), "GITenberg", "Moby-Dick_2701")
	require.NoError(t, err)
	assert.Equal(t, "GITenberg/Moby-Dick_2701", meta.FullName)
	assert.Equal(t, 4096, meta.Size)

	_, err = c.GetRepository(context.Background(), "GITenberg", "Missing_1")
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestOrganizationName(t *testing.T) {
	srv, _ := newTestAPI(t)

	c, err := NewClient(context.Background(), srv.Client(), Credentials{}, srv.URL, nil)
	require.NoError(t, err)

	name, err := c.OrganizationName(context.Background(), "gitenberg")
	require.NoError(t, err)
	assert.Equal(t, "GITenberg", name)
}
