package server

import (
	"strconv"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Index renders the public feed.
func (s *Server) Index(c *fiber.Ctx) error {
	req, err := s.parsePageRequest(c)
	if err != nil {
		return err
	}
	page, err := s.postService.ListIndex(c.UserContext(), req)
	if err != nil {
		return err
	}
	return s.render(c, "blog/index", fiber.Map{"Page": page})
}

// CategoryPosts renders the visible posts of a published category.
func (s *Server) CategoryPosts(c *fiber.Ctx) error {
	req, err := s.parsePageRequest(c)
	if err != nil {
		return err
	}
	category, page, err := s.postService.ListCategory(c.UserContext(), c.Params("slug"), req)
	if err != nil {
		return err
	}
	return s.render(c, "blog/category", fiber.Map{"Category": category, "Page": page})
}

// PostDetail renders a post with its comments. Posts hidden from the viewer
// are not found.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	post, err := s.postService.GetPostForViewer(ctx, id, middleware.Viewer(c))
	if err != nil {
		return err
	}
	comments, err := s.commentService.ListForPost(ctx, id)
	if err != nil {
		return err
	}
	return s.render(c, "blog/detail", fiber.Map{
		"Post":     post,
		"Comments": comments,
		"Form":     validation.NewForm(nil),
	})
}

// postFormValues fills the post form from a stored post.
func postFormValues(post *models.Post) map[string]string {
	values := map[string]string{
		"title":    post.Title,
		"text":     post.Text,
		"pub_date": post.PubDate.UTC().Format(validation.DateTimeLayout),
	}
	if post.CategoryID != nil {
		values["category"] = strconv.FormatUint(uint64(*post.CategoryID), 10)
	}
	if post.LocationID != nil {
		values["location"] = strconv.FormatUint(uint64(*post.LocationID), 10)
	}
	return values
}

type postFormPage struct {
	form     *validation.Form
	post     *models.Post
	action   string
	deleting bool
}

func (s *Server) renderPostForm(c *fiber.Ctx, p postFormPage) error {
	choices, err := s.postService.FormChoices(c.UserContext())
	if err != nil {
		return err
	}
	data := fiber.Map{
		"Form":     p.form,
		"Choices":  choices,
		"Action":   p.action,
		"Deleting": p.deleting,
	}
	if p.post != nil {
		data["Post"] = p.post
	}
	return s.render(c, "blog/create", data)
}

func (s *Server) CreatePostForm(c *fiber.Ctx) error {
	return s.renderPostForm(c, postFormPage{form: validation.NewForm(nil), action: "/posts/create/"})
}

// CreatePost stores a post for the viewer and sends them to their profile.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	viewer := middleware.Viewer(c)
	form := validation.NewForm(formValues(c))
	page := postFormPage{form: form, action: "/posts/create/"}

	in, ok := validation.ParsePost(form)
	if !ok {
		return s.renderPostForm(c, page)
	}
	upload, err := s.imageUpload(c)
	if err != nil {
		return err
	}

	if _, err := s.postService.CreatePost(c.UserContext(), viewer, in, upload); err != nil {
		if mergeFormError(form, err) {
			return s.renderPostForm(c, page)
		}
		return err
	}
	return c.Redirect(profileURL(viewer.Username))
}

// EditPostForm renders the edit form. Other users are sent back to the post.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.GetForEdit(c.UserContext(), id, middleware.Viewer(c))
	if err != nil {
		if models.IsCode(err, models.CodeForbidden) {
			return c.Redirect(postDetailURL(id))
		}
		return err
	}
	return s.renderPostForm(c, postFormPage{
		form:   validation.NewForm(postFormValues(post)),
		post:   post,
		action: c.Path(),
	})
}

// EditPost saves the form and returns to the post. Other users are sent back
// to the post without any change.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	viewer := middleware.Viewer(c)

	post, err := s.postService.GetForEdit(ctx, id, viewer)
	if err != nil {
		if models.IsCode(err, models.CodeForbidden) {
			return c.Redirect(postDetailURL(id))
		}
		return err
	}

	form := validation.NewForm(formValues(c))
	page := postFormPage{form: form, post: post, action: c.Path()}
	in, ok := validation.ParsePost(form)
	if !ok {
		return s.renderPostForm(c, page)
	}
	upload, err := s.imageUpload(c)
	if err != nil {
		return err
	}

	if _, err := s.postService.UpdatePost(ctx, viewer, id, in, upload); err != nil {
		switch {
		case models.IsCode(err, models.CodeForbidden):
			return c.Redirect(postDetailURL(id))
		case mergeFormError(form, err):
			return s.renderPostForm(c, page)
		}
		return err
	}
	return c.Redirect(postDetailURL(id))
}

// DeletePostConfirm shows the post in a disabled form. Other users get 404.
func (s *Server) DeletePostConfirm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.GetForDelete(c.UserContext(), id, middleware.Viewer(c))
	if err != nil {
		return err
	}
	return s.renderPostForm(c, postFormPage{
		form:     validation.NewForm(postFormValues(post)),
		post:     post,
		action:   c.Path(),
		deleting: true,
	})
}

func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.postService.DeletePost(c.UserContext(), middleware.Viewer(c), id); err != nil {
		return err
	}
	return c.Redirect("/")
}
