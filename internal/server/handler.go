package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"library/internal/library"
	"library/internal/opds"
	"library/internal/response"
	"library/internal/storage/fails"
	"library/internal/types"
)

const (
	welcomeMessage = "Welcome to the Infinite Library"
	noResults      = "Sorry, no results found."

	opdsAcquisitionType = "application/atom+xml;profile=opds-catalog;kind=acquisition; charset=utf-8"
)

// colors cycle over search results, purely decorative
var colors = []string{"bg-navy", "bg-blue", "bg-teal", "bg-olive", "bg-green",
	"bg-yellow", "bg-red", "bg-orange", "bg-maroon", "bg-purple"}

type Searcher interface {
	Search(ctx context.Context, term string) ([]*types.Book, error)
}

type Catalog interface {
	Lookup(ctx context.Context, repo string) (*types.Book, error)
}

type ContentRenderer interface {
	Render(ctx context.Context, book *types.Book) (template.HTML, error)
}

type fileLink struct {
	Kind types.FileKind `json:"kind"`
	URL  string         `json:"url"`
}

type bookView struct {
	*types.Book
	Files []fileLink
}

type resultView struct {
	Book  bookView
	Color string
}

type homePage struct {
	Message string
}

type resultsPage struct {
	Message string
	Term    string
	Results []resultView
}

type contentsPage struct {
	Book     bookView
	Contents template.HTML
}

// Handler serves the site. fr may be nil when the failure journal is disabled.
// publicURL prefixes links in OPDS feeds.
func Handler(s Searcher, c Catalog, cr ContentRenderer, fr fails.Repository,
	rr *response.Responder, publicURL string) http.Handler {

	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		rr.RenderPage(w, r.Context(), "index", homePage{Message: welcomeMessage})
	})

	r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("book")

		found, err := s.Search(r.Context(), term)
		if err != nil {
			rr.PageError(w, r.Context(), err, slog.LevelError, http.StatusBadGateway)
			return
		}

		page := resultsPage{Message: noResults, Term: term}
		if len(found) > 0 {
			page.Message = "Found " + strconv.Itoa(len(found)) + " results."
		}

		for ix, b := range found {
			page.Results = append(page.Results, resultView{Book: viewOf(b), Color: colors[ix%len(colors)]})
		}

		rr.RenderPage(w, r.Context(), "results", page)
	})

	r.Get("/book/{repo}", func(w http.ResponseWriter, r *http.Request) {
		book, ok := lookup(w, r, c, rr.PageError)
		if !ok {
			return
		}

		contents, err := cr.Render(r.Context(), book)
		if err != nil {
			slog.WarnContext(r.Context(), "Failed to render contents of "+book.Repo+": "+err.Error())
			contents = ""
		}

		rr.RenderPage(w, r.Context(), "contents", contentsPage{Book: viewOf(book), Contents: contents})
	})

	r.Get("/opds/search", func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("book")

		found, err := s.Search(r.Context(), term)
		if err != nil {
			rr.RespondAndLogCustom(w, r.Context(), err, slog.LevelError, http.StatusBadGateway)
			return
		}

		bs, err := opds.SearchFeed(term, publicURL, found)
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		rr.SendXml(w, opdsAcquisitionType, bs)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
			found, err := s.Search(r.Context(), r.URL.Query().Get("book"))
			if err != nil {
				rr.RespondAndLogCustom(w, r.Context(), err, slog.LevelError, http.StatusBadGateway)
				return
			}

			rr.SendJson(w, r.Context(), struct {
				Books []*types.Book `json:"books"`
			}{Books: found})
		})

		r.Get("/books/{repo}", func(w http.ResponseWriter, r *http.Request) {
			book, ok := lookup(w, r, c, rr.RespondAndLogCustom)
			if !ok {
				return
			}

			rr.SendJson(w, r.Context(), book)
		})

		r.Get("/fails", func(w http.ResponseWriter, r *http.Request) {
			if fr == nil {
				rr.RespondAndLogCustom(w, r.Context(), errors.New("failure journal is disabled"),
					slog.LevelDebug, http.StatusNotFound)
				return
			}

			rows, err := fr.Recent(r.Context(), uint(getIntOrDefault("limit", r.URL.Query(), 50)))
			if err != nil {
				rr.RespondAndLogError(w, r.Context(), err)
				return
			}

			rr.SendJson(w, r.Context(), struct {
				Fails []*fails.Record `json:"fails"`
			}{Fails: rows})
		})

		r.Delete("/fails/{id}", func(w http.ResponseWriter, r *http.Request) {
			if fr == nil {
				rr.RespondAndLogCustom(w, r.Context(), errors.New("failure journal is disabled"),
					slog.LevelDebug, http.StatusNotFound)
				return
			}

			id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				rr.RespondAndLogCustom(w, r.Context(), fmt.Errorf("invalid id: %w", err),
					slog.LevelDebug, http.StatusBadRequest)
				return
			}

			if err := fr.DeleteById(r.Context(), id); err != nil {
				rr.RespondAndLogError(w, r.Context(), err)
				return
			}

			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}

// Stylesheets serves /css/{name}.css out of css
func Stylesheets(r chi.Router, css fs.FS) {
	r.Get("/css/{name}.css", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
			http.NotFound(w, r)
			return
		}

		bs, err := fs.ReadFile(css, name+".css")
		if err != nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		_, _ = w.Write(bs)
	})
}

type errorResponder func(w http.ResponseWriter, ctx context.Context, err error, lvl slog.Level, status int)

func lookup(w http.ResponseWriter, r *http.Request, c Catalog, respond errorResponder) (*types.Book, bool) {
	repo := chi.URLParam(r, "repo")
	if unescaped, err := url.PathUnescape(repo); err == nil {
		repo = unescaped
	}

	book, err := c.Lookup(r.Context(), repo)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			respond(w, r.Context(), err, slog.LevelInfo, http.StatusNotFound)
		} else {
			respond(w, r.Context(), err, slog.LevelError, http.StatusBadGateway)
		}

		return nil, false
	}

	return book, true
}

func viewOf(b *types.Book) bookView {
	v := bookView{Book: b}
	for _, kind := range b.Files.Kinds() {
		u, _ := b.Files.Get(kind)
		v.Files = append(v.Files, fileLink{Kind: kind, URL: u})
	}

	return v
}

func getIntOrDefault(key string, q url.Values, default_ int) int {
	if ls := q.Get(key); ls != "" {
		limit, err := strconv.Atoi(ls)
		if err == nil && limit > 0 {
			return limit
		}
	}

	return default_
}
