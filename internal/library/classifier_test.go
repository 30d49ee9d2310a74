package library

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library/internal/types"
)

type fakeLister struct {
	items map[string][]types.ContentItem
	errs  map[string]error
	calls []string
}

func (f *fakeLister) ListContents(_ context.Context, fullName string) ([]types.ContentItem, error) {
	f.calls = append(f.calls, fullName)
	if err := f.errs[fullName]; err != nil {
		return nil, err
	}

	return f.items[fullName], nil
}

func mobyDick() types.RepoMeta {
	return types.RepoMeta{
		Name:        "Moby-Dick_2701",
		Description: "Moby Dick; Or, The Whale by Herman Melville",
		FullName:    "GITenberg/Moby-Dick_2701",
		Size:        4096,
	}
}

func mobyDickItems() []types.ContentItem {
	return []types.ContentItem{
		{Name: "2701-h", Type: types.ItemTypeDir},
		{Name: "2701.txt", Type: types.ItemTypeFile, DownloadURL: "https://raw.example/2701.txt"},
		{Name: "Moby-Dick.asciidoc", Type: types.ItemTypeFile, DownloadURL: "https://raw.example/bad.asciidoc"},
		{Name: "moby dick.ASCIIDOC", Type: types.ItemTypeFile, DownloadURL: "https://raw.example/moby.asciidoc"},
		{Name: "Cover.JPG", Type: types.ItemTypeFile, DownloadURL: "https://raw.example/cover.jpg"},
		{Name: "README.rst", Type: types.ItemTypeFile, DownloadURL: "https://raw.example/README.rst"},
	}
}

func newClassifier(l ContentsLister) *Classifier {
	return &Classifier{Lister: l, Organization: "GITenberg"}
}

func TestClassify(t *testing.T) {
	lister := &fakeLister{items: map[string][]types.ContentItem{"GITenberg/Moby-Dick_2701": mobyDickItems()}}

	book, err := newClassifier(lister).Classify(context.Background(), mobyDick())
	require.NoError(t, err)

	assert.Equal(t, "Moby-Dick_2701", book.Repo)
	assert.Equal(t, "Moby Dick", book.Name)
	assert.Equal(t, "2701", book.Id)
	assert.Nil(t, book.Subtitle)
	assert.Equal(t, "Moby Dick; Or, The Whale by Herman Melville", book.Description)
	assert.Equal(t, "https://raw.example/cover.jpg", book.Cover)

	assert.Equal(t, 3, book.Files.Len())
	u, ok := book.Files.Get(types.FileKindHTML)
	assert.True(t, ok)
	assert.Equal(t, "https://raw.githubusercontent.com/GITenberg/Moby-Dick_2701/master/2701-h/2701-h.htm", u)
	u, _ = book.Files.Get(types.FileKindTxt)
	assert.Equal(t, "https://raw.example/2701.txt", u)
	u, _ = book.Files.Get(types.FileKindAsciidoc)
	assert.Equal(t, "https://raw.example/moby.asciidoc", u)

	assert.Equal(t, []string{"GITenberg/Moby-Dick_2701"}, lister.calls)
}

func TestClassifyHTMLNeedsDirectory(t *testing.T) {
	lister := &fakeLister{items: map[string][]types.ContentItem{
		"GITenberg/Moby-Dick_2701": {{Name: "2701-h", Type: types.ItemTypeFile, DownloadURL: "https://raw.example/2701-h"}},
	}}

	book, err := newClassifier(lister).Classify(context.Background(), mobyDick())
	require.NoError(t, err)
	assert.False(t, book.Files.Has(types.FileKindHTML))
	assert.Equal(t, 0, book.Files.Len())
}

func TestClassifyRawBaseURL(t *testing.T) {
	lister := &fakeLister{items: map[string][]types.ContentItem{"GITenberg/Moby-Dick_2701": mobyDickItems()}}
	c := newClassifier(lister)
	c.RawBaseURL = "http://127.0.0.1:9999/"

	book, err := c.Classify(context.Background(), mobyDick())
	require.NoError(t, err)

	u, _ := book.Files.Get(types.FileKindHTML)
	assert.Equal(t, "http://127.0.0.1:9999/GITenberg/Moby-Dick_2701/master/2701-h/2701-h.htm", u)
}

func TestClassifySmallRepoSkipsListing(t *testing.T) {
	lister := &fakeLister{}
	repo := mobyDick()
	repo.Size = 10

	book, err := newClassifier(lister).Classify(context.Background(), repo)
	require.NoError(t, err)

	assert.Empty(t, lister.calls)
	assert.Equal(t, 0, book.Files.Len())
	assert.Equal(t, "", book.Cover)
}

func TestClassifyThresholdBoundary(t *testing.T) {
	lister := &fakeLister{}
	repo := mobyDick()
	repo.Size = EmptyRepoThreshold

	_, err := newClassifier(lister).Classify(context.Background(), repo)
	require.NoError(t, err)
	assert.Len(t, lister.calls, 1)
}

func TestClassifySubtitle(t *testing.T) {
	repo := types.RepoMeta{Name: "war-and-peace--annotated_1234", FullName: "GITenberg/war-and-peace--annotated_1234", Size: 1}

	book, err := newClassifier(&fakeLister{}).Classify(context.Background(), repo)
	require.NoError(t, err)

	require.NotNil(t, book.Subtitle)
	assert.Equal(t, "annotated", *book.Subtitle)
	assert.Equal(t, "war and peace", book.Name)
	assert.Equal(t, "1234", book.Id)
}

func TestClassifyLastMatchWins(t *testing.T) {
	lister := &fakeLister{items: map[string][]types.ContentItem{"GITenberg/Moby-Dick_2701": {
		{Name: "2701.txt", Type: types.ItemTypeFile, DownloadURL: "https://raw.example/first.txt"},
		{Name: "cover.jpg", Type: types.ItemTypeFile, DownloadURL: "https://raw.example/first.jpg"},
		{Name: "2701.TXT", Type: types.ItemTypeFile, DownloadURL: "https://raw.example/second.txt"},
		{Name: "COVER.jpg", Type: types.ItemTypeFile, DownloadURL: "https://raw.example/second.jpg"},
	}}}

	book, err := newClassifier(lister).Classify(context.Background(), mobyDick())
	require.NoError(t, err)

	u, _ := book.Files.Get(types.FileKindTxt)
	assert.Equal(t, "https://raw.example/second.txt", u)
	assert.Equal(t, "https://raw.example/second.jpg", book.Cover)
}

func TestClassifyListingError(t *testing.T) {
	boom := errors.New("409 Git Repository is empty")
	lister := &fakeLister{errs: map[string]error{"GITenberg/Moby-Dick_2701": boom}}

	book, err := newClassifier(lister).Classify(context.Background(), mobyDick())
	assert.Nil(t, book)
	assert.ErrorIs(t, err, boom)
}

func TestClassifyIsDeterministic(t *testing.T) {
	lister := &fakeLister{items: map[string][]types.ContentItem{"GITenberg/Moby-Dick_2701": mobyDickItems()}}
	c := newClassifier(lister)

	first, err := c.Classify(context.Background(), mobyDick())
	require.NoError(t, err)
	second, err := c.Classify(context.Background(), mobyDick())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
