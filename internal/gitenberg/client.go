// Package gitenberg adapts the GitHub API to the repository capabilities the library needs.
package gitenberg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v82/github"
	"golang.org/x/oauth2"

	"library/internal/library"
	"library/internal/types"
)

const DefaultOrganization = "GITenberg"

// searchPageSize is the GitHub maximum. Only the first page is ever requested.
const searchPageSize = 100

// Credentials are passed through to GitHub untouched. Token wins over the OAuth app pair.
type Credentials struct {
	Token        string
	ClientID     string
	ClientSecret string
}

type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient builds an API client on top of base (http.DefaultClient when nil). apiURL
// may point at GitHub Enterprise or a test server; empty means api.github.com.
func NewClient(ctx context.Context, base *http.Client, creds Credentials, apiURL string, l *slog.Logger) (*Client, error) {
	if base == nil {
		base = http.DefaultClient
	}

	httpClient := base
	switch {
	case creds.Token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.Token})
		httpClient = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), ts)
	case creds.ClientID != "" && creds.ClientSecret != "":
		tr := &github.BasicAuthTransport{
			Username:  creds.ClientID,
			Password:  creds.ClientSecret,
			Transport: base.Transport,
		}
		httpClient = &http.Client{Transport: tr, Timeout: base.Timeout}
	}

	gh := github.NewClient(httpClient)

	if apiURL != "" {
		u, err := url.Parse(strings.TrimSuffix(apiURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub API URL: %w", err)
		}
		gh.BaseURL = u
	}

	if l == nil {
		l = slog.Default()
	}

	return &Client{gh: gh, logger: l}, nil
}

func (c *Client) SearchRepositories(ctx context.Context, query string) ([]types.RepoMeta, error) {
	res, _, err := c.gh.Search.Repositories(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: searchPageSize},
	})
	if err != nil {
		return nil, translate(err)
	}

	if res.GetIncompleteResults() {
		c.logger.WarnContext(ctx, "GitHub returned incomplete results for query "+query)
	}

	repos := make([]types.RepoMeta, 0, len(res.Repositories))
	for _, r := range res.Repositories {
		repos = append(repos, repoMeta(r))
	}

	return repos, nil
}

// ListContents lists the root directory of the repository named owner/name
func (c *Client) ListContents(ctx context.Context, fullName string) ([]types.ContentItem, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository name %q", fullName)
	}

	file, dir, _, err := c.gh.Repositories.GetContents(ctx, owner, name, "", nil)
	if err != nil {
		return nil, translate(err)
	}

	if file != nil {
		dir = []*github.RepositoryContent{file}
	}

	items := make([]types.ContentItem, 0, len(dir))
	for _, rc := range dir {
		items = append(items, types.ContentItem{
			Name:        rc.GetName(),
			Type:        types.ItemType(rc.GetType()),
			DownloadURL: rc.GetDownloadURL(),
		})
	}

	return items, nil
}

func (c *Client) GetRepository(ctx context.Context, owner, repo string) (types.RepoMeta, error) {
	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return types.RepoMeta{}, translate(err)
	}

	return repoMeta(r), nil
}

// OrganizationName resolves the canonical login of the account hosting the books
func (c *Client) OrganizationName(ctx context.Context, login string) (string, error) {
	u, _, err := c.gh.Users.Get(ctx, login)
	if err != nil {
		return "", translate(err)
	}

	if u.GetLogin() == "" {
		return login, nil
	}

	return u.GetLogin(), nil
}

func repoMeta(r *github.Repository) types.RepoMeta {
	return types.RepoMeta{
		Name:        r.GetName(),
		Description: r.GetDescription(),
		FullName:    r.GetFullName(),
		Size:        r.GetSize(),
	}
}

func translate(err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", library.ErrNotFound, ghErr.Message)
	}

	return err
}
