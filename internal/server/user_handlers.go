package server

import (
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Profile renders a user's posts. The owner also sees unpublished ones.
func (s *Server) Profile(c *fiber.Ctx) error {
	req, err := s.parsePageRequest(c)
	if err != nil {
		return err
	}
	profile, page, err := s.postService.ListProfile(c.UserContext(), c.Params("username"), middleware.Viewer(c), req)
	if err != nil {
		return err
	}
	return s.render(c, "blog/profile", fiber.Map{"Profile": profile, "Page": page})
}

// EditProfileForm renders the viewer's profile form. Anonymous visitors get 404.
func (s *Server) EditProfileForm(c *fiber.Ctx) error {
	viewer := middleware.Viewer(c)
	if viewer == nil {
		return models.NewNotFoundError("User", "anonymous")
	}
	form := validation.NewForm(map[string]string{
		"username":   viewer.Username,
		"first_name": viewer.FirstName,
		"last_name":  viewer.LastName,
		"email":      viewer.Email,
	})
	return s.render(c, "blog/user", fiber.Map{"Form": form})
}

func (s *Server) EditProfile(c *fiber.Ctx) error {
	viewer := middleware.Viewer(c)
	if viewer == nil {
		return models.NewNotFoundError("User", "anonymous")
	}

	form := validation.NewForm(formValues(c))
	in, ok := validation.ParseProfile(form)
	if !ok {
		return s.render(c, "blog/user", fiber.Map{"Form": form})
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), viewer, in)
	if err != nil {
		if mergeFormError(form, err) {
			return s.render(c, "blog/user", fiber.Map{"Form": form})
		}
		return err
	}
	return c.Redirect(profileURL(user.Username))
}
