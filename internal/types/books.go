package types

import (
	"encoding/json"
	"sort"
)

type ItemType string

const (
	ItemTypeFile ItemType = "file"
	ItemTypeDir  ItemType = "dir"
)

// RepoMeta is the part of a remote repository description the classifier needs.
// Size is in the host's units (KB for GitHub) and only used to guess emptiness.
type RepoMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	FullName    string `json:"full_name"`
	Size        int    `json:"size"`
}

type ContentItem struct {
	Name        string   `json:"name"`
	Type        ItemType `json:"type"`
	DownloadURL string   `json:"download_url"`
}

type FileKind string

const (
	FileKindAsciidoc FileKind = "asciidoc"
	FileKindHTML     FileKind = "html"
	FileKindTxt      FileKind = "txt"
)

// Files maps recognized content kinds to download URLs. The zero value is an empty
// mapping. Use FilesBuilder to construct a non-empty one.
type Files struct {
	urls map[FileKind]string
}

func (f Files) Get(kind FileKind) (string, bool) {
	u, ok := f.urls[kind]
	return u, ok
}

func (f Files) Has(kind FileKind) bool {
	_, ok := f.urls[kind]
	return ok
}

func (f Files) Len() int {
	return len(f.urls)
}

// Kinds returns present kinds sorted by name
func (f Files) Kinds() []FileKind {
	kinds := make([]FileKind, 0, len(f.urls))
	for k := range f.urls {
		kinds = append(kinds, k)
	}

	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i] < kinds[j]
	})

	return kinds
}

func (f Files) MarshalJSON() ([]byte, error) {
	if f.urls == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(f.urls)
}

// FilesBuilder collects matches; a later Set for the same kind overrides an earlier one.
type FilesBuilder struct {
	urls map[FileKind]string
}

func (b *FilesBuilder) Set(kind FileKind, url string) {
	if b.urls == nil {
		b.urls = make(map[FileKind]string, 3)
	}

	b.urls[kind] = url
}

// Build copies collected matches so later Set calls do not leak into the result.
func (b *FilesBuilder) Build() Files {
	if len(b.urls) == 0 {
		return Files{}
	}

	urls := make(map[FileKind]string, len(b.urls))
	for k, v := range b.urls {
		urls[k] = v
	}

	return Files{urls: urls}
}

type Book struct {
	Repo        string  `json:"repo"`
	Name        string  `json:"name"`
	Id          string  `json:"id"`
	Subtitle    *string `json:"subtitle,omitempty"`
	Description string  `json:"description,omitempty"`
	Files       Files   `json:"files"`
	Cover       string  `json:"cover_url"`
}
