package server

import "github.com/gofiber/fiber/v2"

// StaticPage renders a template that needs no data.
func (s *Server) StaticPage(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.render(c, name, nil)
	}
}
