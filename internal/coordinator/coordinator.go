// Package coordinator hosts the independently instantiable batch operators of
// the lifecycle engine. Every coordinator shares one construction contract: it
// receives a vault root and an enrichment delegate, resolves its own layout,
// and keeps only the directory paths it actually operates on.
package coordinator

import (
	"fmt"
	"log/slog"

	"github.com/mvantol/ansuz/internal/layout"
	"github.com/mvantol/ansuz/internal/storage"
)

// base is the piece of construction every coordinator shares.
type base struct {
	layout *layout.Layout
	store  storage.Provider
	logger *slog.Logger
}

func newBase(root string, logger *slog.Logger) (base, error) {
	l, err := layout.Resolve(root)
	if err != nil {
		return base{}, err
	}
	if err := l.EnsureExists(); err != nil {
		return base{}, err
	}
	store, err := storage.NewFS(l.Root)
	if err != nil {
		return base{}, fmt.Errorf("coordinator: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return base{layout: l, store: store, logger: logger}, nil
}
