package root

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lanmedia/gallery/internal/lib/logger/sl"
	"github.com/lanmedia/gallery/internal/service"
)

// Root handles the admin surface: activating a media root
// and project namespace, and reporting server status.
type Root struct {
	log       *slog.Logger
	workspace Workspace
}

type Workspace interface {
	Set(root, project string)
	Root() (string, bool)
	Project() string
}

type Status struct {
	ImageRootSet  bool
	ImageRootPath string
	ProjectName   string
}

func New(
	log *slog.Logger,
	workspace Workspace,
) *Root {
	return &Root{
		log:       log,
		workspace: workspace,
	}
}

// SetImageRoot activates path as the media root under the given
// project namespace. The path must exist at activation time.
//
// Concurrent calls follow last-writer-wins.
func (r *Root) SetImageRoot(ctx context.Context, path, project string) error {
	const op = "Root.SetImageRoot"

	log := r.log.With(
		slog.String("op", op),
		slog.String("path", path),
		slog.String("project", project),
	)

	if _, err := os.Stat(path); err != nil {
		log.Warn("image root does not exist", sl.Err(err))
		return fmt.Errorf("%s: %w", op, service.ErrRootNotExist)
	}

	r.workspace.Set(path, project)

	log.Info("image root set")

	return nil
}

// Status reports whether a root is active and under which project.
func (r *Root) Status(ctx context.Context) Status {
	path, ok := r.workspace.Root()

	return Status{
		ImageRootSet:  ok,
		ImageRootPath: path,
		ProjectName:   r.workspace.Project(),
	}
}
