package gallery_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	client "github.com/lanmedia/gallery/internal/client/gallery"
	"github.com/lanmedia/gallery/internal/models"
)

// galleryStub serves a fixed catalog of n entries with the same
// page math as the real paginator.
type galleryStub struct {
	n        int
	fail     atomic.Bool
	toggled  map[string]bool
	failNext atomic.Bool

	rootPath    string
	rootProject string
}

func newGalleryStub(n int) *galleryStub {
	return &galleryStub{n: n, toggled: map[string]bool{}}
}

func (s *galleryStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/images", func(w http.ResponseWriter, r *http.Request) {
		if s.fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}

		offset, _ := strconv.Atoi(r.URL.Query().Get("cursor"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		entries := make([]models.MediaEntry, 0, s.n)
		for i := 0; i < s.n; i++ {
			name := fmt.Sprintf("img%03d.jpg", i)
			entries = append(entries, models.MediaEntry{ID: name, Name: name})
		}

		if favUser := r.URL.Query().Get("favUser"); favUser != "" {
			favorited := entries[:0:0]
			for _, e := range entries {
				if s.toggled[e.ID] {
					e.IsFavorited = true
					favorited = append(favorited, e)
				}
			}
			json.NewEncoder(w).Encode(models.Page{
				Items:       favorited,
				Total:       len(favorited),
				CurrentPage: 1,
				TotalPages:  1,
			})
			return
		}

		start := min(offset, s.n)
		end := min(offset+limit, s.n)

		var next *string
		if offset+limit < s.n {
			cursor := strconv.Itoa(offset + limit)
			next = &cursor
		}

		json.NewEncoder(w).Encode(models.Page{
			Items:       entries[start:end],
			NextCursor:  next,
			Total:       s.n,
			CurrentPage: offset/limit + 1,
			TotalPages:  (s.n + limit - 1) / limit,
		})
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":       "ok",
			"imageRootSet": s.rootPath != "",
			"projectName":  s.rootProject,
		})
	})

	mux.HandleFunc("/set-image-root", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Path        string `json:"path"`
			ProjectName string `json:"projectName"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		s.rootPath = body.Path
		s.rootProject = body.ProjectName
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})

	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string][]string{"users": {"alice", "pip"}})
	})

	mux.HandleFunc("/favorites/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.failNext.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "disk full"})
				return
			}
			id := r.URL.Path[len("/favorites/"):]
			// path is /favorites/<user>/<id>
			for i := 0; i < len(id); i++ {
				if id[i] == '/' {
					id = id[i+1:]
					break
				}
			}
			s.toggled[id] = !s.toggled[id]
			json.NewEncoder(w).Encode(map[string]bool{"isFavorited": s.toggled[id]})
			return
		}

		ids := []string{}
		for id, on := range s.toggled {
			if on {
				ids = append(ids, id)
			}
		}
		json.NewEncoder(w).Encode(map[string][]string{"favorites": ids})
	})

	return mux
}

func newClient(t *testing.T, n int) (*client.Client, *galleryStub) {
	t.Helper()
	stub := newGalleryStub(n)
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	return client.New(client.Config{
		BaseURL:  srv.URL,
		Username: "alice",
		PageSize: 20,
	}), stub
}

func TestLoadMoreAccumulates(t *testing.T) {
	c, _ := newClient(t, 45)
	ctx := context.Background()

	loaded, err := c.LoadMore(ctx)
	require.NoError(t, err)
	require.True(t, loaded)
	require.Len(t, c.Items(), 20)
	require.True(t, c.HasMore())

	_, err = c.LoadMore(ctx)
	require.NoError(t, err)
	_, err = c.LoadMore(ctx)
	require.NoError(t, err)

	require.Len(t, c.Items(), 45)
	require.False(t, c.HasMore())
	require.Equal(t, 45, c.Total())

	// exhausted cursor: trigger stays quiet
	loaded, err = c.LoadMore(ctx)
	require.NoError(t, err)
	require.False(t, loaded)
	require.Len(t, c.Items(), 45)
}

func TestOnLastItemVisibleLoadsNextPage(t *testing.T) {
	c, _ := newClient(t, 45)
	ctx := context.Background()

	require.NoError(t, c.OnLastItemVisible(ctx))
	require.Len(t, c.Items(), 20)

	require.NoError(t, c.OnLastItemVisible(ctx))
	require.Len(t, c.Items(), 40)
	require.True(t, c.HasMore())
}

func TestLoginAdminActivatesRoot(t *testing.T) {
	c, stub := newClient(t, 5)
	ctx := context.Background()

	user, err := c.Login(ctx, "Pip", "/photos/trip", "trip")
	require.NoError(t, err)
	require.True(t, user.IsAdmin)
	require.Equal(t, "Pip", user.Username)
	require.Equal(t, "/photos/trip", stub.rootPath)
	require.Equal(t, "trip", stub.rootProject)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.True(t, health.ImageRootSet)
	require.Equal(t, "trip", health.ProjectName)
}

func TestLoginPlainUserSkipsActivation(t *testing.T) {
	c, stub := newClient(t, 5)

	user, err := c.Login(context.Background(), "bob", "/photos/trip", "trip")
	require.NoError(t, err)
	require.False(t, user.IsAdmin)
	require.Empty(t, stub.rootPath)

	_, err = c.Login(context.Background(), "   ", "", "")
	require.Error(t, err)
}

func TestUsersAndFavoriteCount(t *testing.T) {
	c, _ := newClient(t, 5)
	ctx := context.Background()

	_, err := c.LoadMore(ctx)
	require.NoError(t, err)

	_, err = c.ToggleFavorite(ctx, "img001.jpg")
	require.NoError(t, err)
	_, err = c.ToggleFavorite(ctx, "img003.jpg")
	require.NoError(t, err)

	count, err := c.FavoriteCount(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	users, err := c.Users(ctx)
	require.NoError(t, err)
	require.Contains(t, users, "alice")
}

func TestLoadMoreFailureKeepsItems(t *testing.T) {
	c, stub := newClient(t, 45)
	ctx := context.Background()

	_, err := c.LoadMore(ctx)
	require.NoError(t, err)
	require.Len(t, c.Items(), 20)

	stub.fail.Store(true)
	_, err = c.LoadMore(ctx)
	require.Error(t, err)
	require.Equal(t, client.StateError, c.State())
	require.Error(t, c.Err())
	// prior data stays on screen
	require.Len(t, c.Items(), 20)

	// trigger remains armed: a retry recovers
	stub.fail.Store(false)
	_, err = c.LoadMore(ctx)
	require.NoError(t, err)
	require.Equal(t, client.StateIdle, c.State())
	require.NoError(t, c.Err())
	require.Len(t, c.Items(), 40)
}

func TestJumpDiscardsAccumulatedItems(t *testing.T) {
	c, _ := newClient(t, 45)
	ctx := context.Background()

	_, err := c.LoadMore(ctx)
	require.NoError(t, err)
	require.Len(t, c.Items(), 20)

	require.NoError(t, c.JumpToIndex(ctx, 44))

	items := c.Items()
	require.Len(t, items, 1)
	require.Equal(t, "img044.jpg", items[0].ID)
	require.False(t, c.HasMore())
}

func TestJumpToPage(t *testing.T) {
	c, _ := newClient(t, 45)
	ctx := context.Background()

	require.NoError(t, c.JumpToPage(ctx, 3))

	items := c.Items()
	require.Len(t, items, 5)
	require.Equal(t, "img040.jpg", items[0].ID)

	require.ErrorIs(t, c.JumpToPage(ctx, 0), client.ErrIndexOutOfRange)
}

func TestJumpOutOfRange(t *testing.T) {
	c, _ := newClient(t, 45)
	ctx := context.Background()

	_, err := c.LoadMore(ctx)
	require.NoError(t, err)

	require.ErrorIs(t, c.JumpToIndex(ctx, -1), client.ErrIndexOutOfRange)
	require.ErrorIs(t, c.JumpToIndex(ctx, 45), client.ErrIndexOutOfRange)
}

func TestFavoritesFilterResetsAndExcludesJump(t *testing.T) {
	c, stub := newClient(t, 45)
	ctx := context.Background()

	_, err := c.LoadMore(ctx)
	require.NoError(t, err)

	stub.toggled["img003.jpg"] = true

	require.NoError(t, c.ShowOnlyFavorites(ctx, true))
	items := c.Items()
	require.Len(t, items, 1)
	require.Equal(t, "img003.jpg", items[0].ID)
	require.True(t, items[0].IsFavorited)

	// no cursor semantics in favorites mode
	require.ErrorIs(t, c.JumpToIndex(ctx, 10), client.ErrJumpUnavailable)

	require.NoError(t, c.ShowOnlyFavorites(ctx, false))
	require.Len(t, c.Items(), 20)
}

func TestViewUserClearsOwnFilter(t *testing.T) {
	c, stub := newClient(t, 10)
	ctx := context.Background()

	stub.toggled["img001.jpg"] = true
	require.NoError(t, c.ShowOnlyFavorites(ctx, true))
	require.Len(t, c.Items(), 1)

	require.NoError(t, c.ViewUserFavorites(ctx, "bob"))
	require.ErrorIs(t, c.JumpToIndex(ctx, 0), client.ErrJumpUnavailable)

	require.NoError(t, c.ViewUserFavorites(ctx, ""))
	require.Len(t, c.Items(), 10)
}

func TestStaleResponseAfterJumpIsDiscarded(t *testing.T) {
	stub := newGalleryStub(45)

	reached := make(chan struct{})
	release := make(chan struct{})
	base := stub.handler()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// hold the second page until the client has moved on
		if r.URL.Path == "/images" && r.URL.Query().Get("cursor") == "20" {
			close(reached)
			<-release
		}
		base.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	c := client.New(client.Config{BaseURL: srv.URL, Username: "alice", PageSize: 20})
	ctx := context.Background()

	_, err := c.LoadMore(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.LoadMore(ctx)
	}()
	<-reached

	// the jump supersedes the in-flight page
	require.NoError(t, c.JumpToIndex(ctx, 0))
	require.Len(t, c.Items(), 20)

	close(release)
	<-done

	// the stale page 2 response must not have been merged
	items := c.Items()
	require.Len(t, items, 20)
	require.Equal(t, "img000.jpg", items[0].ID)
}

func TestToggleFavoriteOptimisticCommit(t *testing.T) {
	c, _ := newClient(t, 10)
	ctx := context.Background()

	_, err := c.LoadMore(ctx)
	require.NoError(t, err)

	isFavorited, err := c.ToggleFavorite(ctx, "img002.jpg")
	require.NoError(t, err)
	require.True(t, isFavorited)

	for _, item := range c.Items() {
		if item.ID == "img002.jpg" {
			require.True(t, item.IsFavorited)
		}
	}
}

func TestToggleFavoriteRollbackOnFailure(t *testing.T) {
	c, stub := newClient(t, 10)
	ctx := context.Background()

	_, err := c.LoadMore(ctx)
	require.NoError(t, err)

	stub.failNext.Store(true)
	isFavorited, err := c.ToggleFavorite(ctx, "img002.jpg")
	require.Error(t, err)
	require.False(t, isFavorited)

	// rolled back: the UI shows the prior state
	for _, item := range c.Items() {
		if item.ID == "img002.jpg" {
			require.False(t, item.IsFavorited)
		}
	}
}

func TestUnfavoriteDropsItemInFavoritesView(t *testing.T) {
	c, stub := newClient(t, 10)
	ctx := context.Background()

	stub.toggled["img004.jpg"] = true
	require.NoError(t, c.ShowOnlyFavorites(ctx, true))
	require.Len(t, c.Items(), 1)

	isFavorited, err := c.ToggleFavorite(ctx, "img004.jpg")
	require.NoError(t, err)
	require.False(t, isFavorited)
	require.Empty(t, c.Items())
}
