package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pdfviewer/internal/model"
	"pdfviewer/internal/service"
	"pdfviewer/internal/viewer"
)

type openSessionRequest struct {
	DocumentID string `json:"document_id"`
}

type goToPageRequest struct {
	Page int `json:"page"`
}

type fullscreenRequest struct {
	Active bool `json:"active"`
}

type keyResponse struct {
	Intent string            `json:"intent"`
	State  model.ViewerState `json:"state"`
}

type thumbnailResponse struct {
	Page int    `json:"page"`
	URL  string `json:"url"`
}

// writeSessionError translates viewer errors. A session closed between lookup
// and use is reported as missing.
func writeSessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, viewer.ErrSessionNotFound), errors.Is(err, viewer.ErrSessionClosed):
		return writeError(c, fiber.StatusNotFound, "SESSION_NOT_FOUND", "session not found")
	case errors.Is(err, viewer.ErrNoticeNotFound):
		return writeError(c, fiber.StatusNotFound, "NOTICE_NOT_FOUND", "notice not found")
	case errors.Is(err, viewer.ErrPageOutOfRange):
		return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "page out of range")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return writeError(c, fiber.StatusServiceUnavailable, "REQUEST_CANCELLED", "request cancelled")
	default:
		return internalError(c)
	}
}

// withSession resolves :id to an open session before calling fn.
func withSession(mgr *viewer.Manager, fn func(c *fiber.Ctx, s *viewer.Controller) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := mgr.Get(c.Params("id"))
		if err != nil {
			return writeSessionError(c, err)
		}
		return fn(c, s)
	}
}

// sessionAction runs a state-changing intent and responds with the resulting snapshot.
func sessionAction(mgr *viewer.Manager, act func(ctx context.Context, s *viewer.Controller) error) fiber.Handler {
	return withSession(mgr, func(c *fiber.Ctx, s *viewer.Controller) error {
		if err := act(c.UserContext(), s); err != nil {
			return writeSessionError(c, err)
		}
		return c.JSON(s.Snapshot())
	})
}

// OpenSession starts a viewer session on a document and loads its first page.
//
//	@Summary	Open a viewer session
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		body	body		openSessionRequest	true	"document to open"
//	@Success	201		{object}	model.ViewerState
//	@Failure	404		{object}	errorPayload
//	@Router		/sessions [post]
func OpenSession(mgr *viewer.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req openSessionRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if _, err := uuid.Parse(req.DocumentID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid document id format")
		}

		s, err := mgr.Open(c.UserContext(), req.DocumentID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeSessionError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(s.Snapshot())
	}
}

// GetSession returns the current state of a session.
//
//	@Summary	Session state
//	@Tags		sessions
//	@Produce	json
//	@Param		id	path		string	true	"session id"
//	@Success	200	{object}	model.ViewerState
//	@Failure	404	{object}	errorPayload
//	@Router		/sessions/{id} [get]
func GetSession(mgr *viewer.Manager) fiber.Handler {
	return withSession(mgr, func(c *fiber.Ctx, s *viewer.Controller) error {
		return c.JSON(s.Snapshot())
	})
}

// CloseSession ends a session and releases its page handles.
//
//	@Summary	Close a session
//	@Tags		sessions
//	@Param		id	path	string	true	"session id"
//	@Success	204
//	@Failure	404	{object}	errorPayload
//	@Router		/sessions/{id} [delete]
func CloseSession(mgr *viewer.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := mgr.Close(c.UserContext(), c.Params("id")); err != nil {
			return writeSessionError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GoToPage moves a session to a page. Out-of-range pages leave the state unchanged.
//
//	@Summary	Go to page
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"session id"
//	@Param		body	body		goToPageRequest	true	"target page"
//	@Success	200		{object}	model.ViewerState
//	@Router		/sessions/{id}/page [post]
func GoToPage(mgr *viewer.Manager) fiber.Handler {
	return withSession(mgr, func(c *fiber.Ctx, s *viewer.Controller) error {
		var req goToPageRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := s.GoToPage(c.UserContext(), req.Page); err != nil {
			return writeSessionError(c, err)
		}
		return c.JSON(s.Snapshot())
	})
}

// NextPage advances one page.
func NextPage(mgr *viewer.Manager) fiber.Handler {
	return sessionAction(mgr, func(ctx context.Context, s *viewer.Controller) error {
		return s.NextPage(ctx)
	})
}

// PreviousPage goes back one page.
func PreviousPage(mgr *viewer.Manager) fiber.Handler {
	return sessionAction(mgr, func(ctx context.Context, s *viewer.Controller) error {
		return s.PreviousPage(ctx)
	})
}

func ZoomIn(mgr *viewer.Manager) fiber.Handler {
	return sessionAction(mgr, func(_ context.Context, s *viewer.Controller) error {
		return s.ZoomIn()
	})
}

func ZoomOut(mgr *viewer.Manager) fiber.Handler {
	return sessionAction(mgr, func(_ context.Context, s *viewer.Controller) error {
		return s.ZoomOut()
	})
}

func Rotate(mgr *viewer.Manager) fiber.Handler {
	return sessionAction(mgr, func(_ context.Context, s *viewer.Controller) error {
		return s.Rotate()
	})
}

// ToggleFullscreen asks the host to flip fullscreen.
func ToggleFullscreen(mgr *viewer.Manager) fiber.Handler {
	return sessionAction(mgr, func(ctx context.Context, s *viewer.Controller) error {
		return s.ToggleFullscreen(ctx)
	})
}

// SetFullscreen records a fullscreen change made by the client, such as leaving with Escape.
//
//	@Summary	Report host fullscreen state
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"session id"
//	@Param		body	body		fullscreenRequest	true	"host state"
//	@Success	200		{object}	model.ViewerState
//	@Router		/sessions/{id}/fullscreen [put]
func SetFullscreen(mgr *viewer.Manager) fiber.Handler {
	return withSession(mgr, func(c *fiber.Ctx, s *viewer.Controller) error {
		var req fullscreenRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := s.FullscreenChanged(req.Active); err != nil {
			return writeSessionError(c, err)
		}
		return c.JSON(s.Snapshot())
	})
}

// DispatchKey applies a forwarded keyboard or mouse event and reports how it was classified.
//
//	@Summary	Dispatch an input event
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"session id"
//	@Param		body	body		viewer.InputEvent	true	"input event"
//	@Success	200		{object}	keyResponse
//	@Router		/sessions/{id}/keys [post]
func DispatchKey(mgr *viewer.Manager) fiber.Handler {
	return withSession(mgr, func(c *fiber.Ctx, s *viewer.Controller) error {
		var ev viewer.InputEvent
		if err := c.BodyParser(&ev); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		intent, err := s.DispatchKey(c.UserContext(), ev)
		if err != nil {
			return writeSessionError(c, err)
		}
		return c.JSON(keyResponse{Intent: intent.String(), State: s.Snapshot()})
	})
}

// DismissNotice removes a notice from a session.
//
//	@Summary	Dismiss a notice
//	@Tags		sessions
//	@Param		id		path	string	true	"session id"
//	@Param		notice	path	string	true	"notice id"
//	@Success	204
//	@Failure	404	{object}	errorPayload
//	@Router		/sessions/{id}/notices/{notice} [delete]
func DismissNotice(mgr *viewer.Manager) fiber.Handler {
	return withSession(mgr, func(c *fiber.Ctx, s *viewer.Controller) error {
		if err := s.DismissNotice(c.Params("notice")); err != nil {
			return writeSessionError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// Thumbnail returns a displayable thumbnail reference for a page.
//
//	@Summary	Page thumbnail
//	@Tags		sessions
//	@Produce	json
//	@Param		id		path		string	true	"session id"
//	@Param		page	path		int		true	"page number"
//	@Success	200		{object}	thumbnailResponse
//	@Failure	400		{object}	errorPayload
//	@Router		/sessions/{id}/thumbnails/{page} [get]
func Thumbnail(mgr *viewer.Manager) fiber.Handler {
	return withSession(mgr, func(c *fiber.Ctx, s *viewer.Controller) error {
		page, err := strconv.Atoi(c.Params("page"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		ref, err := s.Thumbnail(c.UserContext(), page)
		if err != nil {
			if errors.Is(err, viewer.ErrPageOutOfRange) || errors.Is(err, viewer.ErrSessionClosed) {
				return writeSessionError(c, err)
			}
			return writeError(c, fiber.StatusBadGateway, "THUMBNAIL_UNAVAILABLE", "thumbnail unavailable")
		}
		return c.JSON(thumbnailResponse{Page: page, URL: ref})
	})
}
