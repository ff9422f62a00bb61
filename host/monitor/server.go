package monitor

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"

	"laneswitch/host/logger"
	"laneswitch/host/version"
)

// staleAfter marks the status stale when no line arrived for this long.
// The firmware writes one every 500 ms.
const staleAfter = 5 * time.Second

const appName = "laneswitch"

// NewServer returns the web app serving store.
func NewServer(store *Store) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
	})

	app.Get("/status", HandleStatus(store))
	app.Get("/health", HandleHealth(store))
	app.Get("/version", HandleVersion())
	return app
}

// Serve listens on addr until ctx is done.
func Serve(ctx context.Context, app *fiber.App, addr string) error {
	ctx = logger.WithName(ctx, "http")

	errc := make(chan error, 1)
	go func() {
		logger.Infof(ctx, "listening on %s", addr)
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ctx.Err()
}

// HandleStatus serves the latest snapshot, or 503 before the first line.
func HandleStatus(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := store.Snapshot()
		if snap.Status == nil {
			c.Status(http.StatusServiceUnavailable)
			return c.JSON(fiber.Map{"error": "no status received", "errors": snap.Errors})
		}
		return c.JSON(snap)
	}
}

// HandleHealth reports whether status lines keep arriving.
func HandleHealth(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := store.Snapshot()
		state := "ok"
		code := http.StatusOK

		age, ok := store.Age()
		switch {
		case !ok:
			state = "waiting"
			code = http.StatusServiceUnavailable
		case age > staleAfter:
			state = "stale"
			code = http.StatusServiceUnavailable
		}

		c.Status(code)
		return c.JSON(fiber.Map{
			"status":        state,
			"age_ms":        age.Milliseconds(),
			"lines":         snap.Lines,
			"errors":        snap.Errors,
			"last_error":    snap.LastError,
			"num_goroutine": runtime.NumGoroutine(),
			"go_version":    runtime.Version(),
		})
	}
}

// HandleVersion serves the build metadata.
func HandleVersion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":       appName,
			"version":    version.Version,
			"commit":     version.Commit,
			"build_time": version.BuildTime,
		})
	}
}
