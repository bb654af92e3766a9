package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/lanmedia/gallery/internal/lib/logger/sl"
	"github.com/lanmedia/gallery/internal/models"
	"github.com/lanmedia/gallery/internal/service"
)

// Media resolves requested file names to paths inside the
// configured root and derives the MIME type to serve them with.
type Media struct {
	log       *slog.Logger
	workspace Workspace
}

type Workspace interface {
	Root() (string, bool)
}

func New(
	log *slog.Logger,
	workspace Workspace,
) *Media {
	return &Media{
		log:       log,
		workspace: workspace,
	}
}

// Resolve validates name against the active root and returns the
// absolute file path with its MIME type.
//
// Returns service.ErrPathTraversal when the resolved path escapes
// the root, service.ErrFileNotFound when no root is configured,
// the file is missing, not regular, or not an allow-listed media file.
func (m *Media) Resolve(ctx context.Context, name string) (string, string, error) {
	const op = "Media.Resolve"

	log := m.log.With(
		slog.String("op", op),
		slog.String("name", name),
	)

	root, ok := m.workspace.Root()
	if !ok {
		log.Warn("media requested with no root configured")
		return "", "", fmt.Errorf("%s: %w", op, service.ErrFileNotFound)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	absPath, err := filepath.Abs(filepath.Join(absRoot, name))
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	// the path must stay inside the root whatever "name" contains
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		log.Warn("path traversal attempt denied")
		return "", "", fmt.Errorf("%s: %w", op, service.ErrPathTraversal)
	}

	info, err := os.Stat(absPath)
	if err != nil || !info.Mode().IsRegular() || !models.IsMediaFile(absPath) {
		return "", "", fmt.Errorf("%s: %w", op, service.ErrFileNotFound)
	}

	mime, ok := models.MimeByName(absPath)
	if !ok {
		// allow-listed name without a table entry: fall back to sniffing
		detected, err := mimetype.DetectFile(absPath)
		if err != nil {
			log.Warn("failed to detect mime type", sl.Err(err))
			mime = "application/octet-stream"
		} else {
			mime = detected.String()
		}
	}

	return absPath, mime, nil
}
