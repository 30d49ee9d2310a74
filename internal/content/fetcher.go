// Package content downloads book text from the URLs the classifier found and turns it
// into an HTML fragment for the book page.
package content

import (
	"context"
	"fmt"
	"html"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"library/internal/types"
)

// maxBodySize caps downloads; the largest Gutenberg HTML editions are a few dozen MB
const maxBodySize = 64 << 20

type Fetcher struct {
	Client *http.Client
	Logger *slog.Logger
}

// Render returns the book contents. The HTML edition is preferred over plain text,
// which is still tried when the HTML one fails. An empty fragment is returned when
// the book has neither.
func (f *Fetcher) Render(ctx context.Context, book *types.Book) (template.HTML, error) {
	txt, hasTxt := book.Files.Get(types.FileKindTxt)

	if u, ok := book.Files.Get(types.FileKindHTML); ok {
		frag, err := f.renderHTML(ctx, u)
		if err == nil || !hasTxt || ctx.Err() != nil {
			return frag, err
		}

		f.logger().WarnContext(ctx, "Failed to render HTML edition, falling back to text: "+err.Error())
	}

	if hasTxt {
		return f.renderText(ctx, txt)
	}

	return "", nil
}

func (f *Fetcher) renderText(ctx context.Context, u string) (template.HTML, error) {
	body, _, err := f.get(ctx, u)
	if err != nil {
		return "", err
	}
	defer body.Close()

	bs, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading text edition: %w", err)
	}

	return template.HTML(TextToHTML(string(bs))), nil
}

func (f *Fetcher) renderHTML(ctx context.Context, u string) (template.HTML, error) {
	body, contentType, err := f.get(ctx, u)
	if err != nil {
		return "", err
	}
	defer body.Close()

	r, err := charset.NewReader(body, contentType)
	if err != nil {
		return "", fmt.Errorf("detecting charset of HTML edition: %w", err)
	}

	frag, err := BodyHTML(r)
	if err != nil {
		return "", err
	}

	return template.HTML(frag), nil
}

// TextToHTML escapes plain text and keeps its line breaks
func TextToHTML(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br />")
}

// BodyHTML returns the <body> element of an HTML document, tag included
func BodyHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML edition: %w", err)
	}

	frag, err := goquery.OuterHtml(doc.Find("body").First())
	if err != nil {
		return "", fmt.Errorf("rendering HTML body: %w", err)
	}

	return frag, nil
}

func (f *Fetcher) get(ctx context.Context, u string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building request for %s: %w", u, err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	f.logger().DebugContext(ctx, "Fetching "+u)

	res, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", u, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_ = res.Body.Close()
		return nil, "", fmt.Errorf("fetching %s: unexpected status %s", u, res.Status)
	}

	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(res.Body, maxBodySize), res.Body}, res.Header.Get("Content-Type"), nil
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}

	return f.Logger
}
