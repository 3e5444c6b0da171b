package server

import (
	"log/slog"
	"time"

	"blogicum/internal/auth"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.sessions.TTL()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) LoginForm(c *fiber.Ctx) error {
	return s.render(c, "registration/login", fiber.Map{
		"Form": validation.NewForm(nil),
		"Next": c.Query("next"),
	})
}

// Login checks the credentials, sets the session cookie and follows next
// when it is a local path.
func (s *Server) Login(c *fiber.Ctx) error {
	form := validation.NewForm(formValues(c))
	next := form.Get("next")
	page := fiber.Map{"Form": form, "Next": next}

	in, ok := validation.ParseLogin(form)
	if !ok {
		return s.render(c, "registration/login", page)
	}

	user, err := s.userService.Authenticate(c.UserContext(), in.Username, in.Password)
	if err != nil {
		if models.IsCode(err, models.CodeUnauthorized) {
			form.AddError("__all__", err.Error())
			return s.render(c, "registration/login", page)
		}
		return err
	}

	token, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return models.NewInternalError(err)
	}
	s.setSessionCookie(c, token)
	return c.Redirect(safeRedirectTarget(next))
}

// Logout revokes the session token and clears the cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if token := c.Cookies(auth.CookieName); token != "" {
		if claims, err := s.sessions.Parse(ctx, token); err == nil {
			if err := s.sessions.Revoke(ctx, claims); err != nil {
				middleware.Logger.WarnContext(ctx, "failed to revoke session", slog.String("error", err.Error()))
			}
		}
	}
	s.clearSessionCookie(c)
	observability.RecordSessionEvent("logout")

	c.Locals(middleware.CurrentUserKey, nil)
	return s.render(c, "registration/logged_out", nil)
}

func (s *Server) RegistrationForm(c *fiber.Ctx) error {
	return s.render(c, "registration/registration_form", fiber.Map{"Form": validation.NewForm(nil)})
}

// Register creates an account and sends the new user to the login page.
func (s *Server) Register(c *fiber.Ctx) error {
	form := validation.NewForm(formValues(c))
	page := fiber.Map{"Form": form}

	in, ok := validation.ParseSignup(form)
	if !ok {
		return s.render(c, "registration/registration_form", page)
	}
	if _, err := s.userService.Register(c.UserContext(), in); err != nil {
		if mergeFormError(form, err) {
			return s.render(c, "registration/registration_form", page)
		}
		return err
	}
	return c.Redirect(s.config.LoginURL)
}
