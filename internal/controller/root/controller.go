package root

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lanmedia/gallery/internal/service"
	rootSrv "github.com/lanmedia/gallery/internal/service/root"
)

// New returns fiber app handling the admin surface:
// health, root activation and the known-users listing.
func New(srv Root, favSrv Favorites) *fiber.App {
	rootCtr := rootController{
		srv:    srv,
		favSrv: favSrv,
	}

	app := fiber.New()

	app.Get("/health", rootCtr.health)
	app.Post("/set-image-root", rootCtr.setImageRoot)
	app.Get("/users", rootCtr.users)

	return app
}

type rootController struct {
	srv    Root
	favSrv Favorites
}

type Root interface {
	SetImageRoot(ctx context.Context, path, project string) error
	Status(ctx context.Context) rootSrv.Status
}

type Favorites interface {
	Users(ctx context.Context, project string) ([]string, error)
}

func (rootCtr *rootController) health(c *fiber.Ctx) error {
	status := rootCtr.srv.Status(context.TODO())

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":        "ok",
		"imageRootSet":  status.ImageRootSet,
		"imageRootPath": nullable(status.ImageRootPath),
		"projectName":   nullable(status.ProjectName),
	})
}

// setImageRoot activates a media root and project namespace.
func (rootCtr *rootController) setImageRoot(c *fiber.Ctx) error {
	var request struct {
		Path        string `json:"path"`
		ProjectName string `json:"projectName"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if request.Path == "" || request.ProjectName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "path and projectName are required",
		})
	}

	if err := rootCtr.srv.SetImageRoot(context.TODO(), request.Path, request.ProjectName); err != nil {
		if errors.Is(err, service.ErrRootNotExist) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "image root does not exist",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":     true,
		"path":        request.Path,
		"projectName": request.ProjectName,
	})
}

// users returns every username present in the active
// project's favorites record.
func (rootCtr *rootController) users(c *fiber.Ctx) error {
	project := rootCtr.srv.Status(context.TODO()).ProjectName
	if project == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": service.ErrNoProject.Error(),
		})
	}

	users, err := rootCtr.favSrv.Users(context.TODO(), project)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if users == nil {
		users = []string{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"users": users,
	})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
