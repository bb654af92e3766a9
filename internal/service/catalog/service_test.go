package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lanmedia/gallery/internal/service/catalog"
	"github.com/lanmedia/gallery/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestListOrdersNumerically(t *testing.T) {
	dir := t.TempDir()
	// deliberately created out of order
	touch(t, dir, "img2.jpg")
	touch(t, dir, "img10.jpg")
	touch(t, dir, "img1.jpg")

	c := catalog.New(discardLogger())

	entries, err := c.List(context.Background(), dir)
	require.NoError(t, err)

	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.ID)
	}
	require.Equal(t, []string{"img1.jpg", "img2.jpg", "img10.jpg"}, got)
}

func TestListIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "B.png")
	touch(t, dir, "a10.png")
	touch(t, dir, "a9.png")
	touch(t, dir, "clip.mp4")

	c := catalog.New(discardLogger())

	first, err := c.List(context.Background(), dir)
	require.NoError(t, err)
	second, err := c.List(context.Background(), dir)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestListFiltersAndClassifies(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "photo.JPG")
	touch(t, dir, "clip.MP4")
	touch(t, dir, "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755))

	c := catalog.New(discardLogger())

	entries, err := c.List(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byID := map[string]bool{}
	for _, e := range entries {
		byID[e.ID] = e.IsVideo
	}
	require.Contains(t, byID, "photo.JPG")
	require.Contains(t, byID, "clip.MP4")
	require.False(t, byID["photo.JPG"])
	require.True(t, byID["clip.MP4"])
}

func TestListEntryMetadata(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), []byte("12345"), 0o644))

	c := catalog.New(discardLogger())

	entries, err := c.List(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	require.Equal(t, "pic.png", entry.Name)
	require.Equal(t, "/media/pic.png", entry.URL)
	require.EqualValues(t, 5, entry.Size)
	require.False(t, entry.ModifiedAt.IsZero())
	require.Equal(t, 300, entry.Width)
	require.Equal(t, 200, entry.Height)
	require.False(t, entry.IsFavorited)
}

func TestListUnreadableRoot(t *testing.T) {
	c := catalog.New(discardLogger())

	_, err := c.List(context.Background(), filepath.Join(t.TempDir(), "gone"))
	require.ErrorIs(t, err, storage.ErrRootUnavailable)
}
