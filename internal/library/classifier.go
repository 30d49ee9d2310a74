package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"library/internal/types"
)

const (
	// EmptyRepoThreshold is the repository size under which the host is assumed to have
	// no contents. GitHub answers a contents request on an empty repository with an error.
	EmptyRepoThreshold = 50

	DefaultRawBaseURL = "https://raw.githubusercontent.com"

	coverFileName = "cover.jpg"
)

var ErrNotFound = errors.New("not found")

type ContentsLister interface {
	ListContents(ctx context.Context, fullName string) ([]types.ContentItem, error)
}

type Classifier struct {
	Lister ContentsLister
	// Organization is the owner login used in constructed raw-content URLs
	Organization string
	// RawBaseURL defaults to DefaultRawBaseURL
	RawBaseURL string
	Logger     *slog.Logger
}

// Classify builds a Book out of a repository description and, unless the repository
// looks empty, its root listing.
func (c *Classifier) Classify(ctx context.Context, repo types.RepoMeta) (*types.Book, error) {
	book := &types.Book{
		Repo:        repo.Name,
		Name:        Humanize(repo.Name),
		Id:          BookId(repo.Name),
		Description: repo.Description,
	}

	if subtitle, ok := Subtitle(repo.Name); ok {
		book.Subtitle = &subtitle
	}

	if repo.Size < EmptyRepoThreshold {
		c.logger().DebugContext(ctx, "Skipping contents of "+repo.FullName+": repository looks empty")
		return book, nil
	}

	items, err := c.Lister.ListContents(ctx, repo.FullName)
	if err != nil {
		return nil, fmt.Errorf("listing contents of %s: %w", repo.FullName, err)
	}

	var files types.FilesBuilder
	for _, item := range items {
		switch {
		case lowerEqual(item.Name, book.Name+".asciidoc"):
			files.Set(types.FileKindAsciidoc, item.DownloadURL)
		case lowerEqual(item.Name, book.Id+"-h") && item.Type == types.ItemTypeDir:
			files.Set(types.FileKindHTML, c.htmlURL(repo.Name, book.Id))
		case lowerEqual(item.Name, book.Id+".txt"):
			files.Set(types.FileKindTxt, item.DownloadURL)
		}

		if lowerEqual(item.Name, coverFileName) {
			book.Cover = item.DownloadURL
		}
	}

	book.Files = files.Build()

	return book, nil
}

// htmlURL points at {id}-h/{id}-h.htm on the master branch. The path is a GITenberg
// convention and is not checked against the directory listing.
func (c *Classifier) htmlURL(repoName, id string) string {
	base := c.RawBaseURL
	if base == "" {
		base = DefaultRawBaseURL
	}

	return strings.TrimSuffix(base, "/") + "/" + c.Organization + "/" + repoName + "/master/" +
		id + "-h/" + id + "-h.htm"
}

func (c *Classifier) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}

	return c.Logger
}
