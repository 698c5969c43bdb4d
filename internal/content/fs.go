package content

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sitelint/sitelint/internal/model"
)

// maxMediaBytes caps how much of a media file is loaded for analysis.
// The analyzer itself never needs more than this.
const maxMediaBytes = 1 << 20

// FSSource serves content from .html files under a root directory. The
// content id is the file's slash-separated path relative to the root.
type FSSource struct {
	root   string
	siteID string
}

// NewFSSource creates a filesystem content source for one site.
func NewFSSource(root, siteID string) *FSSource {
	return &FSSource{root: root, siteID: siteID}
}

func (s *FSSource) path(contentID string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(contentID))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", eris.Errorf("content: id escapes root: %s", contentID)
	}
	return filepath.Join(s.root, clean), nil
}

// GetMarkup reads the file for contentID and returns its markup.
func (s *FSSource) GetMarkup(ctx context.Context, contentID string) (string, model.ContentMeta, error) {
	if err := ctx.Err(); err != nil {
		return "", model.ContentMeta{}, err
	}
	p, err := s.path(contentID)
	if err != nil {
		return "", model.ContentMeta{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", model.ContentMeta{}, eris.Wrapf(err, "content: read %s", contentID)
	}
	meta := model.ContentMeta{
		SiteID:      s.siteID,
		ContentID:   contentID,
		ContentType: "page",
	}
	return string(data), meta, nil
}

// Exists reports whether the content id still resolves to a file.
func (s *FSSource) Exists(ctx context.Context, contentID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p, err := s.path(contentID)
	if err != nil {
		return false, nil
	}
	_, err = os.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, eris.Wrapf(err, "content: stat %s", contentID)
}

// ListIDs walks the root and returns every .html content id, sorted by
// walk order. Used by the batch scan command.
func (s *FSSource) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		ids = append(ids, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "content: list %s", s.root)
	}
	return ids, nil
}

// FSMediaSource resolves media identifiers as paths under a root directory.
// Remote identifiers (http/https) are refused; the animated-image rule
// treats unreadable media as not animated.
type FSMediaSource struct {
	root string
}

// NewFSMediaSource creates a filesystem media source.
func NewFSMediaSource(root string) *FSMediaSource {
	return &FSMediaSource{root: root}
}

// Read loads at most maxMediaBytes of the identified file.
func (m *FSMediaSource) Read(ctx context.Context, identifier string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.HasPrefix(identifier, "http://") || strings.HasPrefix(identifier, "https://") || strings.HasPrefix(identifier, "//") {
		return nil, eris.Errorf("content: remote media not supported: %s", identifier)
	}
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(identifier, "/")))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, eris.Errorf("content: media id escapes root: %s", identifier)
	}
	f, err := os.Open(filepath.Join(m.root, clean))
	if err != nil {
		return nil, eris.Wrapf(err, "content: open media %s", identifier)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxMediaBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "content: read media %s", identifier)
	}
	return data, nil
}
