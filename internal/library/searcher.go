package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"library/internal/types"
)

type RepositorySearcher interface {
	SearchRepositories(ctx context.Context, query string) ([]types.RepoMeta, error)
}

type RepositoryGetter interface {
	GetRepository(ctx context.Context, owner, repo string) (types.RepoMeta, error)
}

// FailureRecorder receives repositories the searcher had to skip. Optional.
type FailureRecorder interface {
	Save(ctx context.Context, repo string, err error) error
}

type Searcher struct {
	Repositories RepositorySearcher
	Classifier   *Classifier
	// Organization scopes the search query (user:<Organization>)
	Organization string
	Failures     FailureRecorder
	Logger       *slog.Logger
}

func Query(term, organization string) string {
	return strings.TrimSpace(term) + " user:" + organization
}

// Search returns the books found for term in search order. Repositories without any
// recognized file are left out; so are those whose classification failed.
func (s *Searcher) Search(ctx context.Context, term string) ([]*types.Book, error) {
	l := s.logger().With(slog.String("term", term))

	repos, err := s.Repositories.SearchRepositories(ctx, Query(term, s.Organization))
	if err != nil {
		return nil, fmt.Errorf("searching repositories: %w", err)
	}

	l.DebugContext(ctx, fmt.Sprintf("Search returned %d repositories", len(repos)))

	found := make([]*types.Book, 0, len(repos))
	for _, repo := range repos {
		book, err := s.Classifier.Classify(ctx, repo)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			l.WarnContext(ctx, "Failed to classify repository "+repo.FullName+": "+err.Error())
			s.recordFailure(ctx, repo.Name, err)
			continue
		}

		if book.Files.Len() == 0 {
			l.DebugContext(ctx, "Dropping repository "+repo.FullName+": no book files")
			continue
		}

		found = append(found, book)
	}

	return found, nil
}

func (s *Searcher) recordFailure(ctx context.Context, repo string, err error) {
	if s.Failures == nil {
		return
	}

	if err := s.Failures.Save(ctx, repo, err); err != nil {
		s.logger().ErrorContext(ctx, "Failed to save classification failure of "+repo+": "+err.Error())
	}
}

func (s *Searcher) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}

	return s.Logger
}

// Catalog looks up single books of the organization by repository name
type Catalog struct {
	Repositories RepositoryGetter
	Classifier   *Classifier
	Organization string
}

func (c *Catalog) Lookup(ctx context.Context, repo string) (*types.Book, error) {
	meta, err := c.Repositories.GetRepository(ctx, c.Organization, repo)
	if err != nil {
		return nil, fmt.Errorf("fetching repository %s: %w", repo, err)
	}

	return c.Classifier.Classify(ctx, meta)
}
