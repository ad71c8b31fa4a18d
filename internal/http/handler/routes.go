package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"pdfviewer/internal/handle"
	"pdfviewer/internal/http/middleware"
	"pdfviewer/internal/service"
	"pdfviewer/internal/viewer"
)

// Dependencies are the collaborators the HTTP layer talks to.
// Nil Sessions or Handles skips the viewer routes; a nil Gatherer skips /metrics.
type Dependencies struct {
	DB        *sql.DB
	Documents service.DocumentService
	Sessions  *viewer.Manager
	Handles   *handle.Registry
	Gatherer  prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; behavior lives in the service and viewer packages.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/health", HealthCheck(deps.DB))
	app.Get("/healthz", LivenessProbe())
	if deps.Gatherer != nil {
		app.Get("/metrics", Metrics(deps.Gatherer))
	}

	app.Get("/documents", ListDocuments(deps.Documents))
	app.Post("/documents", UploadDocument(deps.Documents))
	app.Get("/documents/:id", GetDocument(deps.Documents))
	app.Delete("/documents/:id", DeleteDocument(deps.Documents))

	if deps.Sessions != nil {
		mgr := deps.Sessions
		sessions := app.Group("/sessions")
		sessions.Post("/", OpenSession(mgr))
		sessions.Get("/:id", GetSession(mgr))
		sessions.Delete("/:id", CloseSession(mgr))
		sessions.Post("/:id/page", GoToPage(mgr))
		sessions.Post("/:id/next", NextPage(mgr))
		sessions.Post("/:id/previous", PreviousPage(mgr))
		sessions.Post("/:id/zoom-in", ZoomIn(mgr))
		sessions.Post("/:id/zoom-out", ZoomOut(mgr))
		sessions.Post("/:id/rotate", Rotate(mgr))
		sessions.Post("/:id/fullscreen", ToggleFullscreen(mgr))
		sessions.Put("/:id/fullscreen", SetFullscreen(mgr))
		sessions.Post("/:id/keys", DispatchKey(mgr))
		sessions.Delete("/:id/notices/:notice", DismissNotice(mgr))
		sessions.Get("/:id/thumbnails/:page", Thumbnail(mgr))
	}

	if deps.Handles != nil {
		app.Get("/handles/:id", middleware.NoStore(), ServeHandle(deps.Handles))
	}
}
