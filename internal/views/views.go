// Package views renders the site's HTML pages from templates embedded in the
// binary. Engine implements fiber.Views.
package views

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
)

const (
	baseTemplate    = "templates/base.html"
	includesPattern = "templates/includes/*.html"
	dateTimeFormat  = "02 January 2006, 15:04"
	formInputFormat = "2006-01-02T15:04"
)

var pageDirs = []string{"blog", "registration", "pages"}

// Engine parses every page together with the base layout and the shared
// includes. Page names are paths below templates/ without the extension,
// such as "blog/detail".
type Engine struct {
	mediaURL string

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// New returns an engine whose media func prefixes stored paths with mediaURL.
func New(mediaURL string) *Engine {
	return &Engine{
		mediaURL: strings.TrimSuffix(mediaURL, "/") + "/",
		pages:    map[string]*template.Template{},
	}
}

func (e *Engine) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": renderMarkdown,
		"date": func(t time.Time) string {
			return t.UTC().Format(dateTimeFormat)
		},
		"inputDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format(formInputFormat)
		},
		"media": func(rel string) string {
			return e.mediaURL + strings.TrimPrefix(rel, "/")
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		// sameID compares a record ID with a submitted form value.
		"sameID": func(id uint, value string) bool {
			return value != "" && strconv.FormatUint(uint64(id), 10) == value
		},
	}
}

func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	// goldmark escapes raw HTML unless WithUnsafe is set.
	return template.HTML(buf.String()) //nolint:gosec
}

// Load parses all pages. It is called once by fiber before the first render.
func (e *Engine) Load() error {
	pages := map[string]*template.Template{}
	for _, dir := range pageDirs {
		files, err := fs.Glob(templateFS, path.Join("templates", dir, "*.html"))
		if err != nil {
			return err
		}
		for _, file := range files {
			name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
			tmpl, err := template.New(name).Funcs(e.funcs()).ParseFS(templateFS, baseTemplate, includesPattern, file)
			if err != nil {
				return fmt.Errorf("parse template %s: %w", name, err)
			}
			pages[name] = tmpl
		}
	}

	e.mu.Lock()
	e.pages = pages
	e.mu.Unlock()
	return nil
}

// Render executes page name inside the base layout. The layout argument is
// accepted for fiber.Views and ignored.
func (e *Engine) Render(w io.Writer, name string, binding interface{}, _ ...string) error {
	name = strings.TrimSuffix(name, ".html")

	e.mu.RLock()
	tmpl, ok := e.pages[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	// A template error leaves w untouched.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", binding); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Has reports whether page name is loaded.
func (e *Engine) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.pages[strings.TrimSuffix(name, ".html")]
	return ok
}
