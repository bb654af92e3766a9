package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/lanmedia/gallery/internal/lib/logger/sl"
	"github.com/lanmedia/gallery/internal/models"
	"github.com/lanmedia/gallery/internal/storage"
)

// Gallery answers the three query shapes over the catalog:
// paged-all, favorites-only, and jump (paged-all with a
// client-chosen offset). The full catalog is recomputed on
// every call; correctness under directory changes is preferred
// over caching for the directory sizes this tool targets.
type Gallery struct {
	log         *slog.Logger
	catalog     Catalog
	favorites   Favorites
	workspace   Workspace
	pageSize    int
	maxPageSize int
}

type Catalog interface {
	List(ctx context.Context, root string) ([]models.MediaEntry, error)
}

type Favorites interface {
	FavoriteSet(ctx context.Context, project, username string) (mapset.Set[string], error)
}

type Workspace interface {
	Root() (string, bool)
	Project() string
}

func New(
	log *slog.Logger,
	catalog Catalog,
	favorites Favorites,
	workspace Workspace,
	pageSize int,
	maxPageSize int,
) *Gallery {
	return &Gallery{
		log:         log,
		catalog:     catalog,
		favorites:   favorites,
		workspace:   workspace,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

// Page resolves a gallery query against the current catalog.
//
// An unconfigured root is a valid state, not an error: every
// mode then returns an empty, cursor-exhausted page.
func (g *Gallery) Page(ctx context.Context, query models.GalleryQuery) (models.Page, error) {
	const op = "Gallery.Page"

	log := g.log.With(slog.String("op", op))

	root, ok := g.workspace.Root()
	if !ok {
		return emptyPage(), nil
	}

	entries, err := g.catalog.List(ctx, root)
	if err != nil {
		if errors.Is(err, storage.ErrRootUnavailable) {
			// root vanished after configuration: zero results, not a crash
			log.Warn("media root unavailable, returning empty page")
			return emptyPage(), nil
		}
		log.Error("failed to list catalog", sl.Err(err))
		return models.Page{}, fmt.Errorf("%s: %w", op, err)
	}

	if query.FavUser != "" {
		return g.favoritesPage(ctx, log, entries, query.FavUser)
	}

	return g.pagedAll(ctx, log, entries, query)
}

// favoritesPage returns every favorited entry still present in
// the catalog, unpaged. Favorite ids with no file behind them
// are dropped, never returned as phantom entries.
func (g *Gallery) favoritesPage(
	ctx context.Context,
	log *slog.Logger,
	entries []models.MediaEntry,
	favUser string,
) (models.Page, error) {
	const op = "Gallery.favoritesPage"

	favorited, err := g.favorites.FavoriteSet(ctx, g.workspace.Project(), favUser)
	if err != nil {
		log.Error("failed to load favorites", sl.Err(err))
		return models.Page{}, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]models.MediaEntry, 0, favorited.Cardinality())
	for _, entry := range entries {
		if favorited.Contains(entry.ID) {
			entry.IsFavorited = true
			items = append(items, entry)
		}
	}

	log.Info(
		"favorites page",
		slog.String("favUser", favUser),
		slog.Int("count", len(items)),
	)

	return models.Page{
		Items:       items,
		NextCursor:  nil,
		Total:       len(items),
		CurrentPage: 1,
		TotalPages:  1,
	}, nil
}

func (g *Gallery) pagedAll(
	ctx context.Context,
	log *slog.Logger,
	entries []models.MediaEntry,
	query models.GalleryQuery,
) (models.Page, error) {
	if query.Search != "" {
		entries = filterSearch(entries, query.Search)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = g.pageSize
	}
	if limit > g.maxPageSize {
		limit = g.maxPageSize
	}

	offset := query.Offset
	total := len(entries)

	start := min(offset, total)
	end := min(offset+limit, total)
	items := entries[start:end]

	if query.Viewer != "" {
		g.enrich(ctx, log, items, query.Viewer)
	}

	var nextCursor *string
	if offset+limit < total {
		cursor := strconv.Itoa(offset + limit)
		nextCursor = &cursor
	}

	log.Info(
		"paged catalog",
		slog.Int("offset", offset),
		slog.Int("limit", limit),
		slog.Int("total", total),
	)

	return models.Page{
		Items:       items,
		NextCursor:  nextCursor,
		Total:       total,
		CurrentPage: offset/limit + 1,
		TotalPages:  (total + limit - 1) / limit,
	}, nil
}

// enrich marks entries favorited by viewer. Enrichment is
// best-effort: a failed favorites read leaves entries unmarked.
func (g *Gallery) enrich(
	ctx context.Context,
	log *slog.Logger,
	items []models.MediaEntry,
	viewer string,
) {
	favorited, err := g.favorites.FavoriteSet(ctx, g.workspace.Project(), viewer)
	if err != nil {
		log.Warn("failed to enrich with favorites", sl.Err(err))
		return
	}

	for i := range items {
		items[i].IsFavorited = favorited.Contains(items[i].ID)
	}
}

func emptyPage() models.Page {
	return models.Page{
		Items:       []models.MediaEntry{},
		NextCursor:  nil,
		Total:       0,
		CurrentPage: 1,
		TotalPages:  0,
	}
}
