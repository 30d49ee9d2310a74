package opds

import (
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/opds-community/libopds2-go/opds1"

	"library/internal/types"
)

const (
	linkTypeAcquisition = "application/atom+xml;profile=opds-catalog;kind=acquisition"
	linkTypeHTML        = "text/html"
	linkRelImage        = "http://opds-spec.org/image"
	linkRelAcquisition  = "http://opds-spec.org/acquisition/open-access"
	linkRelSelf         = "self"
	linkRelAlternate    = "alternate"

	bookIdTemplate = "tag:book:"
	feedIdTemplate = "tag:search:"
)

var mediaTypes = map[types.FileKind]string{
	types.FileKindAsciidoc: "text/asciidoc",
	types.FileKindHTML:     "text/html",
	types.FileKindTxt:      "text/plain",
}

type atomFeed struct {
	XMLName xml.Name `xml:"http://www.w3.org/2005/Atom feed"`
	opds1.Feed
}

// SearchFeed renders books found for term as an OPDS 1.2 acquisition feed.
// baseURL is the public root of the site and is used for self and alternate links.
func SearchFeed(term, baseURL string, books []*types.Book) ([]byte, error) {
	base := strings.TrimSuffix(baseURL, "/")
	q := url.Values{"book": {term}}.Encode()

	feed := atomFeed{Feed: opds1.Feed{
		ID:    feedIdTemplate + term,
		Title: "Search results for " + term,
		Links: []opds1.Link{
			{Rel: linkRelSelf, Href: base + "/opds/search?" + q, TypeLink: linkTypeAcquisition},
			{Rel: linkRelAlternate, Href: base + "/search?" + q, TypeLink: linkTypeHTML},
		},
	}}

	for _, b := range books {
		feed.Entries = append(feed.Entries, entry(base, b))
	}

	bs, err := xml.MarshalIndent(&feed, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), bs...), nil
}

func entry(base string, b *types.Book) opds1.Entry {
	title := b.Name
	if b.Subtitle != nil && *b.Subtitle != "" {
		title += ": " + *b.Subtitle
	}

	e := opds1.Entry{
		ID:    bookIdTemplate + b.Repo,
		Title: title,
		Links: []opds1.Link{
			{Rel: linkRelAlternate, Href: base + "/book/" + url.PathEscape(b.Repo), TypeLink: linkTypeHTML},
		},
	}
	e.Content.Content = b.Description

	for _, kind := range b.Files.Kinds() {
		u, _ := b.Files.Get(kind)
		e.Links = append(e.Links, opds1.Link{
			Rel:      linkRelAcquisition,
			Href:     u,
			TypeLink: mediaTypes[kind],
			Title:    string(kind),
		})
	}

	if b.Cover != "" {
		e.Links = append(e.Links, opds1.Link{Rel: linkRelImage, Href: b.Cover, TypeLink: "image/jpeg"})
	}

	return e
}
