package suite

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	routerApp "github.com/lanmedia/gallery/internal/app/router"
	"github.com/lanmedia/gallery/internal/config"
	"github.com/lanmedia/gallery/internal/lib/logger/slogpretty"
	"github.com/lanmedia/gallery/internal/storage/jsonfile"

	"log/slog"
)

// Actual environment
var _ = godotenv.Load("../.env")

// Suite runs the full router in-process; requests go through
// fiber's Test hook instead of a live listener.
type Suite struct {
	Cfg      *config.Config
	App      *routerApp.App
	MediaDir string
}

func New(t *testing.T) *Suite {
	t.Helper()

	cfg := loadConfig(t)
	mediaDir := t.TempDir()

	storage, err := jsonfile.New(cfg.ProjectsDir)
	require.NoError(t, err)

	app := routerApp.New(
		testLogger(),
		storage,
		cfg.Address,
		cfg.CORSOrigins,
		cfg.PageSize,
		cfg.MaxPageSize,
		cfg.CacheMaxAge,
	)

	return &Suite{
		Cfg:      cfg,
		App:      app,
		MediaDir: mediaDir,
	}
}

// loadConfig builds a throwaway config through the regular loader,
// so the suite exercises the same code path as cmd/gallery.
func loadConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "env: \"local\"\nprojects_dir: \"" + filepath.Join(dir, "projects") + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	return config.MustLoadPath(path)
}

func testLogger() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{Level: slog.LevelError},
	}
	return slog.New(opts.NewPrettyHandler(os.Stderr))
}

// Expect binds httpexpect to the in-process app.
func (s *Suite) Expect(t *testing.T) *httpexpect.Expect {
	return httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  "http://gallery.test",
		Reporter: httpexpect.NewAssertReporter(t),
		Client: &http.Client{
			Transport: appTransport{app: s.App},
		},
	})
}

type appTransport struct {
	app *routerApp.App
}

func (tr appTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return tr.app.Test(req, int((5 * time.Second).Milliseconds()))
}

// SeedMedia fills the media dir with n sequentially named images.
func (s *Suite) SeedMedia(t *testing.T, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("img%03d.jpg", i)
		require.NoError(t, os.WriteFile(filepath.Join(s.MediaDir, name), []byte("jpeg-bytes"), 0o644))
	}
}

// ActivateRoot points the running app at the suite's media dir.
func (s *Suite) ActivateRoot(t *testing.T, project string) {
	s.Expect(t).POST("/set-image-root").
		WithJSON(map[string]string{
			"path":        s.MediaDir,
			"projectName": project,
		}).
		Expect().
		Status(http.StatusOK).
		JSON().
		Path("$.success").
		Boolean().
		IsTrue()
}
