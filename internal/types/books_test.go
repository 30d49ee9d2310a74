package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesBuilder(t *testing.T) {
	var b FilesBuilder
	b.Set(FileKindTxt, "first")
	b.Set(FileKindTxt, "second")
	b.Set(FileKindHTML, "html")

	f := b.Build()
	b.Set(FileKindAsciidoc, "late")

	assert.Equal(t, 2, f.Len())
	assert.False(t, f.Has(FileKindAsciidoc))
	u, ok := f.Get(FileKindTxt)
	assert.True(t, ok)
	assert.Equal(t, "second", u)
	assert.Equal(t, []FileKind{FileKindHTML, FileKindTxt}, f.Kinds())
}

func TestFilesJSON(t *testing.T) {
	bs, err := json.Marshal(Files{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(bs))

	var b FilesBuilder
	b.Set(FileKindTxt, "https://raw.example/1.txt")
	bs, err = json.Marshal(Book{Repo: "x_1", Files: b.Build()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"repo":"x_1","name":"","id":"","files":{"txt":"https://raw.example/1.txt"},"cover_url":""}`, string(bs))
}
