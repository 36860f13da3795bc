// Package view parses the page templates and hands them to gin. Templates
// come from an fs.FS (normally the embedded web package); when they come from
// a directory on disk they can be re-parsed on change.
package view

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin/render"
)

// Renderer implements gin's render.HTMLRender over a swappable template set.
type Renderer struct {
	mu      sync.RWMutex
	tmpl    *template.Template
	fsys    fs.FS
	pattern string
	funcs   template.FuncMap
}

// New parses every file matching pattern in fsys.
func New(fsys fs.FS, pattern string, funcs template.FuncMap) (*Renderer, error) {
	r := &Renderer{fsys: fsys, pattern: pattern, funcs: funcs}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses the templates. The previous set stays active on error.
func (r *Renderer) Reload() error {
	t, err := template.New("").Funcs(r.funcs).ParseFS(r.fsys, r.pattern)
	if err != nil {
		return fmt.Errorf("parse templates %s: %w", r.pattern, err)
	}
	r.mu.Lock()
	r.tmpl = t
	r.mu.Unlock()
	return nil
}

// Instance satisfies render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	r.mu.RLock()
	t := r.tmpl
	r.mu.RUnlock()
	return render.HTML{Template: t, Name: name, Data: data}
}

// Has reports whether a template with the given name was parsed.
func (r *Renderer) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tmpl.Lookup(name) != nil
}

// Watch re-parses the templates whenever a file in dir is written, created,
// renamed or removed, until ctx is cancelled. Bursts of events are debounced.
func (r *Renderer) Watch(ctx context.Context, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return err
	}
	slog.Info("watching templates", "dir", dir)

	go func() {
		defer w.Close()
		var pending bool
		var last time.Time
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					pending = true
					last = time.Now()
				}
			case <-ticker.C:
				if pending && time.Since(last) > 150*time.Millisecond {
					pending = false
					if err := r.Reload(); err != nil {
						slog.Warn("template reload failed", "error", err)
					} else {
						slog.Info("templates reloaded", "dir", dir)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("template watch error", "error", err)
			}
		}
	}()
	return nil
}

// Load picks the template source: the embedded sub-tree of embedded when dir
// is empty, otherwise dir/sub on disk. The returned directory is the one to
// watch ("" for embedded).
func Load(embedded fs.FS, dir, sub string, funcs template.FuncMap) (*Renderer, string, error) {
	if dir == "" {
		subFS, err := fs.Sub(embedded, sub)
		if err != nil {
			return nil, "", fmt.Errorf("templates %s: %w", sub, err)
		}
		r, err := New(subFS, "*.html", funcs)
		return r, "", err
	}
	full := filepath.Join(dir, sub)
	r, err := New(os.DirFS(full), "*.html", funcs)
	return r, full, err
}
