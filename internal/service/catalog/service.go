package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lanmedia/gallery/internal/lib/logger/sl"
	"github.com/lanmedia/gallery/internal/models"
	"github.com/lanmedia/gallery/internal/storage"
)

// Catalog lists and classifies media files in a root directory.
// Pure read, no caching: every call re-reads the directory so
// position-based cursors always index the real contents.
type Catalog struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Catalog {
	return &Catalog{
		log: log,
	}
}

// List returns the ordered media entries of root's immediate children.
//
// Returns storage.ErrRootUnavailable if the directory cannot be read.
func (c *Catalog) List(ctx context.Context, root string) ([]models.MediaEntry, error) {
	const op = "Catalog.List"

	log := c.log.With(
		slog.String("op", op),
		slog.String("root", root),
	)

	dirEntries, err := os.ReadDir(root)
	if err != nil {
		log.Warn("failed to read media root", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, storage.ErrRootUnavailable)
	}

	names := make([]string, 0, len(dirEntries))
	infos := make(map[string]os.FileInfo, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || !models.IsMediaFile(dirEntry.Name()) {
			continue
		}
		info, err := dirEntry.Info()
		if err != nil {
			// entry vanished between readdir and stat, skip it
			log.Warn("failed to stat entry", slog.String("name", dirEntry.Name()), sl.Err(err))
			continue
		}
		names = append(names, dirEntry.Name())
		infos[dirEntry.Name()] = info
	}

	sortNames(names)

	entries := make([]models.MediaEntry, 0, len(names))
	for _, name := range names {
		info := infos[name]
		entries = append(entries, models.MediaEntry{
			ID:         name,
			Name:       name,
			URL:        models.MediaURL(name),
			Width:      models.PlaceholderWidth,
			Height:     models.PlaceholderHeight,
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
			IsVideo:    models.IsVideoFile(name),
		})
	}

	return entries, nil
}

// sortNames orders file names the way the gallery presents them:
// case-insensitive, with embedded digit runs compared numerically,
// so "img2" sorts before "img10". The ordering depends only on the
// name set, never on directory insertion order.
func sortNames(names []string) {
	col := collate.New(language.Und, collate.Numeric, collate.IgnoreCase)
	sort.SliceStable(names, func(i, j int) bool {
		return col.CompareString(names[i], names[j]) < 0
	})
}
