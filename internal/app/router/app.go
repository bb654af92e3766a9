package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/lanmedia/gallery/internal/lib/workspace"
	"github.com/lanmedia/gallery/internal/storage/jsonfile"

	catalogSrv "github.com/lanmedia/gallery/internal/service/catalog"
	favoritesSrv "github.com/lanmedia/gallery/internal/service/favorites"
	gallerySrv "github.com/lanmedia/gallery/internal/service/gallery"
	mediaSrv "github.com/lanmedia/gallery/internal/service/media"
	rootSrv "github.com/lanmedia/gallery/internal/service/root"

	favoritesCtr "github.com/lanmedia/gallery/internal/controller/favorites"
	galleryCtr "github.com/lanmedia/gallery/internal/controller/gallery"
	mediaCtr "github.com/lanmedia/gallery/internal/controller/media"
	rootCtr "github.com/lanmedia/gallery/internal/controller/root"
)

type App struct {
	log     *slog.Logger
	address string
	app     *fiber.App
}

// New returns configured router.App
func New(
	log *slog.Logger,
	favStorage *jsonfile.Storage,
	address string,
	corsOrigins string,
	pageSize int,
	maxPageSize int,
	cacheMaxAge time.Duration,
) *App {
	// Shared root/project state, set once by an admin action
	ws := workspace.New()

	// Create services
	catalog := catalogSrv.New(log)

	favorites := favoritesSrv.New(
		log,
		favStorage,
	)

	gallery := gallerySrv.New(
		log,
		catalog,
		favorites,
		ws,
		pageSize,
		maxPageSize,
	)

	media := mediaSrv.New(
		log,
		ws,
	)

	root := rootSrv.New(
		log,
		ws,
	)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
	}))

	// Mount controllers to an app
	app.Mount("/", rootCtr.New(root, favorites))
	app.Mount("/", galleryCtr.New(gallery))
	app.Mount("/media", mediaCtr.New(media, cacheMaxAge))
	app.Mount("/favorites", favoritesCtr.New(favorites, ws))

	return &App{
		log:     log,
		address: address,
		app:     app,
	}
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	return a.app.Listen(a.address)
}

func (a *App) Stop() {
	a.app.Shutdown()
}

// Test runs a request against the app in-process.
// Used by the functional suite instead of a live listener.
func (a *App) Test(req *http.Request, msTimeout ...int) (*http.Response, error) {
	return a.app.Test(req, msTimeout...)
}
