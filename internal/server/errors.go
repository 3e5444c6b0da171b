package server

import (
	"errors"
	"log/slog"

	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps an error returned by a handler to its HTTP status.
func statusFor(err error) int {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeNotFound:
			return fiber.StatusNotFound
		case models.CodeForbidden:
			return fiber.StatusForbidden
		case models.CodeUnauthorized:
			return fiber.StatusUnauthorized
		case models.CodeValidation:
			return fiber.StatusBadRequest
		}
		return fiber.StatusInternalServerError
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders the error pages. Hidden and missing resources share the
// same 404 page.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)

	var page string
	switch {
	case code == fiber.StatusNotFound:
		page = "pages/404"
	case code >= fiber.StatusInternalServerError:
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		page = "pages/500"
	default:
		msg := err.Error()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			msg = fe.Message
		}
		return c.Status(code).SendString(msg)
	}

	c.Status(code)
	if rerr := s.render(c, page, fiber.Map{"Path": c.Path()}); rerr != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "failed to render error page", slog.String("error", rerr.Error()))
		return c.Status(code).SendString(fiber.ErrInternalServerError.Message)
	}
	return nil
}

// csrfFailure renders the rejected-form page.
func (s *Server) csrfFailure(c *fiber.Ctx, err error) error {
	middleware.Logger.WarnContext(c.UserContext(), "csrf check failed",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return c.Status(fiber.StatusForbidden).Render("pages/403csrf", fiber.Map{})
}
