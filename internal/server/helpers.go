package server

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/repository"
	"blogicum/internal/service"
	"blogicum/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// render executes page name with data plus the viewer and CSRF token every
// page needs.
func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if viewer := middleware.Viewer(c); viewer != nil {
		data["Viewer"] = viewer
	}
	data["CSRFToken"] = csrfToken(c)
	return c.Render(name, data)
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals(csrfContextKey).(string)
	return token
}

// parseID reads a positive numeric route parameter. Anything else is a page
// that does not exist.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError(param, raw)
	}
	return uint(id), nil
}

// parsePageRequest reads ?page=. Missing means 1 and "last" the final page.
func (s *Server) parsePageRequest(c *fiber.Ctx) (repository.PageRequest, error) {
	req := repository.PageRequest{Number: 1, Size: s.config.PageSize}

	switch raw := c.Query("page"); raw {
	case "":
	case "last":
		req.Last = true
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, models.NewNotFoundError("Page", raw)
		}
		req.Number = n
	}
	return req, nil
}

// formValues collects the first value of every submitted field, from either
// an urlencoded or a multipart body.
func formValues(c *fiber.Ctx) map[string]string {
	values := map[string]string{}
	if mf, err := c.MultipartForm(); err == nil {
		for k, v := range mf.Value {
			if len(v) > 0 {
				values[k] = v[0]
			}
		}
	} else {
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			values[string(k)] = string(v)
		})
	}
	delete(values, csrfFormField)
	return values
}

// imageUpload returns the uploaded image file, or nil when none was sent.
func (s *Server) imageUpload(c *fiber.Ctx) (*service.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	if fh.Filename == "" && fh.Size == 0 {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &service.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func postDetailURL(postID uint) string {
	return fmt.Sprintf("/posts/%d/", postID)
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

// safeRedirectTarget accepts only local absolute paths.
func safeRedirectTarget(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "/"
	}
	return next
}

// mergeFormError copies field errors reported by a service into form. It
// returns false when err is not a form error.
func mergeFormError(form *validation.Form, err error) bool {
	fields := models.FieldErrors(err)
	if fields == nil {
		return false
	}
	form.Merge(fields)
	return true
}
