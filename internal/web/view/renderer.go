package view

import (
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
)

// MemRenderer holds every view of a file system in memory. It is used
// with the embedded templates, which can't change while the server runs.
type MemRenderer struct {
	views map[string]*View
}

// NewMemRenderer parses every top level html file of viewFS as a view.
// It fails if any view fails to parse, so broken templates are found at startup.
func NewMemRenderer(viewFS fs.FS) (*MemRenderer, error) {
	files, err := fs.Glob(viewFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob for views: %w", err)
	}

	r := &MemRenderer{
		views: make(map[string]*View, len(files)),
	}

	for _, file := range files {
		v, err := Parse(viewFS, strings.TrimSuffix(file, ".html"))
		if err != nil {
			return nil, err
		}
		r.views[v.Name()] = v
	}

	return r, nil
}

// Names returns the names of all views, sorted.
func (r *MemRenderer) Names() []string {
	names := make([]string, 0, len(r.views))
	for name := range r.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *MemRenderer) Render(w io.Writer, name string, data any) error {
	v, ok := r.views[name]
	if !ok {
		return fmt.Errorf("view %q not found", name)
	}

	return v.Render(w, data)
}

// FSRenderer parses the view on every render. It is used during development
// to load templates from disk, so changes show up without a restart.
type FSRenderer struct {
	fs fs.FS
}

func NewFSRenderer(viewFS fs.FS) *FSRenderer {
	return &FSRenderer{fs: viewFS}
}

func (r *FSRenderer) Render(w io.Writer, name string, data any) error {
	v, err := Parse(r.fs, name)
	if err != nil {
		return err
	}

	return v.Render(w, data)
}
