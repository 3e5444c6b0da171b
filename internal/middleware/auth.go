// Package middleware provides request logging, session and infrastructure
// middleware for the application.
package middleware

import (
	"context"
	"net/url"

	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CurrentUserKey is the fiber locals key holding the *models.User of the request.
const CurrentUserKey = "currentUser"

// SessionLoader resolves a session cookie value to its user. It returns an
// error for unknown, expired or revoked sessions.
type SessionLoader func(ctx context.Context, token string) (*models.User, error)

// CurrentUser resolves the session cookie on every request. Anonymous requests
// and broken sessions continue with no user; a broken cookie is cleared.
func CurrentUser(cookieName string, load SessionLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			return c.Next()
		}

		user, err := load(c.UserContext(), token)
		if err != nil || user == nil {
			c.ClearCookie(cookieName)
			return c.Next()
		}

		c.Locals(CurrentUserKey, user)
		c.Locals("userID", user.ID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, user.ID))
		return c.Next()
	}
}

// Viewer returns the signed-in user, or nil for anonymous requests.
func Viewer(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(CurrentUserKey).(*models.User)
	return user
}

// LoginRequired redirects anonymous callers to loginURL, remembering where
// they were going in the next parameter.
func LoginRequired(loginURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Viewer(c) != nil {
			return c.Next()
		}
		return c.Redirect(LoginRedirectURL(loginURL, c.OriginalURL()))
	}
}

// LoginRedirectURL builds loginURL?next=<next>.
func LoginRedirectURL(loginURL, next string) string {
	return loginURL + "?" + url.Values{"next": {next}}.Encode()
}
