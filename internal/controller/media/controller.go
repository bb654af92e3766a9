package media

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lanmedia/gallery/internal/service"
)

// New returns fiber app serving raw media bytes.
// Mounted under /media.
func New(srv Media, cacheMaxAge time.Duration) *fiber.App {
	mediaCtr := mediaController{
		srv:          srv,
		cacheControl: "public, max-age=" + strconv.Itoa(int(cacheMaxAge.Seconds())),
	}

	app := fiber.New()

	app.Get("/:filename", mediaCtr.file)

	return app
}

type mediaController struct {
	srv          Media
	cacheControl string
}

type Media interface {
	Resolve(ctx context.Context, name string) (path string, mime string, err error)
}

// file streams one media file. Traversal attempts are denied
// regardless of URL encoding: the name is decoded first and
// the resolved path checked against the root.
func (mediaCtr *mediaController) file(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("filename"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "bad file name",
		})
	}

	path, mime, err := mediaCtr.srv.Resolve(context.TODO(), name)
	if err != nil {
		if errors.Is(err, service.ErrPathTraversal) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "access denied",
			})
		}
		if errors.Is(err, service.ErrFileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "file not found or not a media file",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if err := c.SendFile(path); err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	c.Set(fiber.HeaderContentType, mime)
	c.Set(fiber.HeaderCacheControl, mediaCtr.cacheControl)

	return nil
}
