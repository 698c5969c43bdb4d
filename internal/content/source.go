// Package content defines how the engine obtains markup and media bytes.
// Concrete transports (CMS, database, HTTP) live behind these interfaces.
package content

import (
	"context"

	"github.com/sitelint/sitelint/internal/model"
)

// Source supplies scannable markup. GetMarkup returns the raw markup and
// the item's metadata; Exists answers whether the content id still
// resolves, which the orphan reaper relies on.
type Source interface {
	GetMarkup(ctx context.Context, contentID string) (string, model.ContentMeta, error)
	Exists(ctx context.Context, contentID string) (bool, error)
}

// MediaSource reads raw media bytes for rules that need the binary
// analyzer. Identifiers are whatever the markup references (src values).
type MediaSource interface {
	Read(ctx context.Context, identifier string) ([]byte, error)
}
