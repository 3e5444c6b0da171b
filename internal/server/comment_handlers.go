package server

import (
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// commentRoute reads the post and comment ids of a comment route.
func commentRoute(c *fiber.Ctx) (postID, commentID uint, err error) {
	if postID, err = parseID(c, "postId"); err != nil {
		return 0, 0, err
	}
	if commentID, err = parseID(c, "commentId"); err != nil {
		return 0, 0, err
	}
	return postID, commentID, nil
}

func (s *Server) renderCommentForm(c *fiber.Ctx, postID uint, comment *models.Comment, form *validation.Form, deleting bool) error {
	data := fiber.Map{
		"PostID":   postID,
		"Form":     form,
		"Deleting": deleting,
	}
	if comment != nil {
		data["Comment"] = comment
	}
	return s.render(c, "blog/comment", data)
}

// AddComment attaches a comment to an existing post.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	form := validation.NewForm(formValues(c))
	in, ok := validation.ParseComment(form)
	if !ok {
		if err := s.commentService.EnsurePost(ctx, postID); err != nil {
			return err
		}
		return s.renderCommentForm(c, postID, nil, form, false)
	}

	if _, err := s.commentService.CreateComment(ctx, middleware.Viewer(c), postID, in); err != nil {
		return err
	}
	return c.Redirect(postDetailURL(postID))
}

// loadOwnComment resolves the comment of a route for the viewer. ok is false
// when the response is a redirect back to the post.
func (s *Server) loadOwnComment(c *fiber.Ctx) (comment *models.Comment, postID uint, ok bool, err error) {
	postID, commentID, err := commentRoute(c)
	if err != nil {
		return nil, 0, false, err
	}
	comment, err = s.commentService.GetForEdit(c.UserContext(), middleware.Viewer(c), postID, commentID)
	if err != nil {
		if models.IsCode(err, models.CodeForbidden) {
			return nil, postID, false, c.Redirect(postDetailURL(postID))
		}
		return nil, postID, false, err
	}
	return comment, postID, true, nil
}

// EditCommentForm renders the comment form. Anyone but the author is sent
// back to the post.
func (s *Server) EditCommentForm(c *fiber.Ctx) error {
	comment, postID, ok, err := s.loadOwnComment(c)
	if !ok {
		return err
	}
	form := validation.NewForm(map[string]string{"text": comment.Text})
	return s.renderCommentForm(c, postID, comment, form, false)
}

func (s *Server) EditComment(c *fiber.Ctx) error {
	comment, postID, ok, err := s.loadOwnComment(c)
	if !ok {
		return err
	}

	form := validation.NewForm(formValues(c))
	in, valid := validation.ParseComment(form)
	if !valid {
		return s.renderCommentForm(c, postID, comment, form, false)
	}
	if _, err := s.commentService.UpdateComment(c.UserContext(), middleware.Viewer(c), postID, comment.ID, in); err != nil {
		return err
	}
	return c.Redirect(postDetailURL(postID))
}

func (s *Server) DeleteCommentConfirm(c *fiber.Ctx) error {
	comment, postID, ok, err := s.loadOwnComment(c)
	if !ok {
		return err
	}
	return s.renderCommentForm(c, postID, comment, validation.NewForm(nil), true)
}

func (s *Server) DeleteComment(c *fiber.Ctx) error {
	comment, postID, ok, err := s.loadOwnComment(c)
	if !ok {
		return err
	}
	if err := s.commentService.DeleteComment(c.UserContext(), middleware.Viewer(c), postID, comment.ID); err != nil {
		return err
	}
	return c.Redirect(postDetailURL(postID))
}
