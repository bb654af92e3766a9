package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/lanmedia/gallery/internal/lib/logger/sl"
	"github.com/lanmedia/gallery/internal/models"
	"github.com/lanmedia/gallery/internal/service"
	"github.com/lanmedia/gallery/internal/storage"
)

type Favorites struct {
	log        *slog.Logger
	favStorage FavoritesStorage
}

type FavoritesStorage interface {
	Load(project string) (models.FavoritesRecord, error)
	Toggle(project, username, mediaID string) (bool, error)
}

func New(
	log *slog.Logger,
	favStorage FavoritesStorage,
) *Favorites {
	return &Favorites{
		log:        log,
		favStorage: favStorage,
	}
}

// Toggle flips the favorite state of mediaID for username and
// returns the new membership state.
func (f *Favorites) Toggle(ctx context.Context, project, username, mediaID string) (bool, error) {
	const op = "Favorites.Toggle"

	log := f.log.With(
		slog.String("op", op),
		slog.String("project", project),
		slog.String("username", username),
	)

	isFavorited, err := f.favStorage.Toggle(project, username, mediaID)
	if err != nil {
		log.Error("failed to toggle favorite", slog.String("mediaId", mediaID), sl.Err(err))
		return false, fmt.Errorf("%s: %w", op, service.ErrSaveFavorites)
	}

	log.Info(
		"toggled favorite",
		slog.String("mediaId", mediaID),
		slog.Bool("isFavorited", isFavorited),
	)

	return isFavorited, nil
}

// Favorites returns the user's favorite ids in insertion order.
// Unknown users get an empty list.
func (f *Favorites) Favorites(ctx context.Context, project, username string) ([]string, error) {
	const op = "Favorites.Favorites"

	record, err := f.load(op, project)
	if err != nil {
		return nil, err
	}

	ids := record[username]
	if ids == nil {
		ids = []string{}
	}

	return ids, nil
}

// FavoriteSet returns the user's favorites as a set for
// membership checks during enrichment.
func (f *Favorites) FavoriteSet(ctx context.Context, project, username string) (mapset.Set[string], error) {
	ids, err := f.Favorites(ctx, project, username)
	if err != nil {
		return nil, err
	}

	return mapset.NewThreadUnsafeSet(ids...), nil
}

// Users returns every username present in the project's record.
func (f *Favorites) Users(ctx context.Context, project string) ([]string, error) {
	const op = "Favorites.Users"

	record, err := f.load(op, project)
	if err != nil {
		return nil, err
	}

	return record.Users(), nil
}

// Count returns the size of the user's favorite set.
func (f *Favorites) Count(ctx context.Context, project, username string) (int, error) {
	const op = "Favorites.Count"

	record, err := f.load(op, project)
	if err != nil {
		return 0, err
	}

	return len(record[username]), nil
}

// load reads the record, degrading a corrupt file to an empty
// record. Silently dropping prior data here is an accepted risk
// for this tool; the event is logged so it is at least visible.
func (f *Favorites) load(op, project string) (models.FavoritesRecord, error) {
	log := f.log.With(
		slog.String("op", op),
		slog.String("project", project),
	)

	record, err := f.favStorage.Load(project)
	if err != nil {
		if errors.Is(err, storage.ErrCorruptRecord) {
			log.Error("favorites record corrupt, treating as empty")
			return models.FavoritesRecord{}, nil
		}
		log.Error("failed to load favorites record", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return record, nil
}
