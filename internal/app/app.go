package app

import (
	"log/slog"
	"os"
	"time"

	routerApp "github.com/lanmedia/gallery/internal/app/router"
	"github.com/lanmedia/gallery/internal/lib/logger/sl"
	"github.com/lanmedia/gallery/internal/storage/jsonfile"
)

type App struct {
	Router routerApp.App
}

func New(
	log *slog.Logger,
	address string,
	projectsDir string,
	corsOrigins string,
	pageSize int,
	maxPageSize int,
	cacheMaxAge time.Duration,
) *App {
	storage, err := jsonfile.New(projectsDir)
	if err != nil {
		log.Error("failed to init favorites storage", sl.Err(err))
		os.Exit(1)
	}

	routerApp := routerApp.New(
		log,
		storage,
		address,
		corsOrigins,
		pageSize,
		maxPageSize,
		cacheMaxAge,
	)

	return &App{
		Router: *routerApp,
	}
}
