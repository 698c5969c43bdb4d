package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, data string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
}

func TestFSSource_GetMarkup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/hello.html", "<h1>Hello</h1>")
	src := NewFSSource(root, "site-1")

	markup, meta, err := src.GetMarkup(context.Background(), "posts/hello.html")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hello</h1>", markup)
	assert.Equal(t, "site-1", meta.SiteID)
	assert.Equal(t, "posts/hello.html", meta.ContentID)
	assert.Equal(t, "page", meta.ContentType)
}

func TestFSSource_GetMarkup_Missing(t *testing.T) {
	src := NewFSSource(t.TempDir(), "site-1")
	_, _, err := src.GetMarkup(context.Background(), "nope.html")
	assert.Error(t, err)
}

func TestFSSource_Exists(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.html", "<p>x</p>")
	src := NewFSSource(root, "site-1")

	ok, err := src.Exists(context.Background(), "a.html")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = src.Exists(context.Background(), "gone.html")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFSSource_RejectsEscapingIDs(t *testing.T) {
	src := NewFSSource(t.TempDir(), "site-1")
	_, _, err := src.GetMarkup(context.Background(), "../outside.html")
	assert.Error(t, err)
}

func TestFSSource_ListIDs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.html", "x")
	writeFile(t, root, "sub/b.html", "y")
	writeFile(t, root, "notes.txt", "z")
	src := NewFSSource(root, "site-1")

	ids, err := src.ListIDs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.html", "sub/b.html"}, ids)
}

func TestFSMediaSource_Read(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "img/pic.gif", "GIF89a....")
	m := NewFSMediaSource(root)

	data, err := m.Read(context.Background(), "/img/pic.gif")
	require.NoError(t, err)
	assert.Equal(t, "GIF89a....", string(data))
}

func TestFSMediaSource_RefusesRemote(t *testing.T) {
	m := NewFSMediaSource(t.TempDir())
	_, err := m.Read(context.Background(), "https://cdn.example.com/a.gif")
	assert.Error(t, err)
}
