package gallery

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lanmedia/gallery/internal/models"
)

// New returns fiber app serving the paginated listing.
func New(srv Gallery) *fiber.App {
	galleryCtr := galleryController{
		srv: srv,
	}

	app := fiber.New()

	app.Get("/images", galleryCtr.images)

	return app
}

type galleryController struct {
	srv Gallery
}

type Gallery interface {
	Page(ctx context.Context, query models.GalleryQuery) (models.Page, error)
}

// images answers the three listing modes: paged-all (cursor+limit),
// favorites-only (favUser) and jump (client-chosen cursor).
func (galleryCtr *galleryController) images(c *fiber.Ctx) error {
	cursor := c.Query("cursor", "0")
	offset, err := strconv.Atoi(cursor)
	if err != nil || offset < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "bad cursor",
		})
	}

	limit := 0
	if s := c.Query("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "bad limit",
			})
		}
	}

	page, err := galleryCtr.srv.Page(context.TODO(), models.GalleryQuery{
		Offset:  offset,
		Limit:   limit,
		FavUser: c.Query("favUser"),
		Viewer:  c.Query("user"),
		Search:  c.Query("search"),
	})
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(page)
}
