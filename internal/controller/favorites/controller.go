package favorites

import (
	"context"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/lanmedia/gallery/internal/service"
)

// New returns fiber app for per-user favorites.
// Mounted under /favorites.
func New(srv Favorites, workspace Workspace) *fiber.App {
	favCtr := favoritesController{
		srv:       srv,
		workspace: workspace,
	}

	app := fiber.New()

	app.Get("/:username", favCtr.favorites)
	app.Post("/:username/:imageId", favCtr.toggle)

	return app
}

type favoritesController struct {
	srv       Favorites
	workspace Workspace
}

type Favorites interface {
	Favorites(ctx context.Context, project, username string) ([]string, error)
	Toggle(ctx context.Context, project, username, mediaID string) (bool, error)
}

type Workspace interface {
	Project() string
}

// favorites returns the user's favorited ids.
func (favCtr *favoritesController) favorites(c *fiber.Ctx) error {
	project := favCtr.workspace.Project()
	if project == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": service.ErrNoProject.Error(),
		})
	}

	username, err := url.PathUnescape(c.Params("username"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "bad username",
		})
	}

	favorites, err := favCtr.srv.Favorites(context.TODO(), project, username)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"favorites": favorites,
	})
}

// toggle flips one favorite and reports the new state.
func (favCtr *favoritesController) toggle(c *fiber.Ctx) error {
	project := favCtr.workspace.Project()
	if project == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": service.ErrNoProject.Error(),
		})
	}

	username, err := url.PathUnescape(c.Params("username"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "bad username",
		})
	}

	imageID, err := url.PathUnescape(c.Params("imageId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "bad image id",
		})
	}

	isFavorited, err := favCtr.srv.Toggle(context.TODO(), project, username, imageID)
	if err != nil {
		if errors.Is(err, service.ErrSaveFavorites) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": service.ErrSaveFavorites.Error(),
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"isFavorited": isFavorited,
	})
}
