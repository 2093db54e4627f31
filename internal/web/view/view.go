package view

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"
)

const (
	baseFile     = "base.html"
	partialsGlob = "partials/*.html"
)

// View is a named page. It is made of these templates:
//   - base.html, the layout (required).
//   - {name}.html, the page that defines "content" (optional).
//   - partials/*.html, shared snippets (optional).
type View struct {
	name     string
	template *template.Template
}

// funcs are available in every template.
var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
}

// Parse parses the view with the given name from viewFS.
// An empty name, or "base", parses the layout on its own.
func Parse(viewFS fs.FS, name string) (*View, error) {
	// Names usually come from code, but they end up in file paths
	// so we only allow a safe set of characters.
	if err := validateName(name); err != nil {
		return nil, err
	}

	files := []string{baseFile}
	if name != "" && name+".html" != baseFile {
		files = append(files, name+".html")
	}

	partials, err := fs.Glob(viewFS, partialsGlob)
	if err != nil {
		return nil, fmt.Errorf("failed to glob for partials: %w", err)
	}
	files = append(files, partials...)

	t, err := template.New(baseFile).Funcs(funcs).ParseFS(viewFS, files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse view %q: %w", name, err)
	}

	return &View{
		name:     name,
		template: t,
	}, nil
}

// Name returns the name of the view.
func (v *View) Name() string {
	return v.name
}

// Render executes the view with data and writes the result to w.
func (v *View) Render(w io.Writer, data any) error {
	return v.template.Execute(w, data)
}

func validateName(name string) error {
	for _, c := range name {
		if !validNameRune(c) {
			return fmt.Errorf("invalid character %q in view name %q", c, name)
		}
	}
	return nil
}

func validNameRune(r rune) bool {
	switch {
	case r == '-' || r == '_':
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return false
}
