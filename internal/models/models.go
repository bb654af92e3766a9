package models

import (
	"net/url"
	"strings"
	"time"
)

// TODO: split into different files when become too big

// AdminUsername is the only name with admin rights.
// Comparison is case-insensitive.
const AdminUsername = "pip"

// Placeholder dimensions reported for every entry.
// Real metadata extraction is out of scope.
const (
	PlaceholderWidth  = 300
	PlaceholderHeight = 200
)

type User struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// NewUser builds a session identity from a raw username.
// Admin status is a pure function of the name.
func NewUser(username string) User {
	name := strings.TrimSpace(username)
	return User{
		Username: name,
		IsAdmin:  strings.EqualFold(name, AdminUsername),
	}
}

type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

// MediaEntry is one media file on disk, materialized fresh
// on every listing request and never cached.
type MediaEntry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	IsFavorited bool      `json:"isFavorited"`
	Size        int64     `json:"size"`
	ModifiedAt  time.Time `json:"modifiedTime"`
	IsVideo     bool      `json:"isVideo"`
}

func (e MediaEntry) Kind() MediaKind {
	if e.IsVideo {
		return KindVideo
	}
	return KindImage
}

// MediaURL is the serving path for a file name.
func MediaURL(name string) string {
	return "/media/" + url.PathEscape(name)
}

// GalleryQuery selects one of the paginator modes.
// FavUser switches to the exhaustive favorites mode,
// otherwise Offset/Limit window the full catalog.
type GalleryQuery struct {
	Offset int
	Limit  int
	// FavUser is the user whose favorites are requested.
	FavUser string
	// Viewer is the user isFavorited is computed for
	// in paged mode. Empty means no enrichment.
	Viewer string
	// Search optionally narrows the catalog by fuzzy name match.
	Search string
}

// Page is the answer to a gallery query.
// NextCursor == nil signals an exhausted listing.
type Page struct {
	Items       []MediaEntry `json:"items"`
	NextCursor  *string      `json:"nextCursor"`
	Total       int          `json:"total"`
	CurrentPage int          `json:"currentPage"`
	TotalPages  int          `json:"totalPages"`
}

// FavoritesRecord is the persisted per-project mapping from
// username to favorited media ids. The slice keeps insertion
// order but is semantically a set.
type FavoritesRecord map[string][]string

// Users returns the key set of the record.
func (r FavoritesRecord) Users() []string {
	users := make([]string, 0, len(r))
	for name := range r {
		users = append(users, name)
	}
	return users
}
