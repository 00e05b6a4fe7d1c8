package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
)

// Cache loads templates on demand and keeps them until invalidated. User
// templates in Dir shadow built-ins with the same id. It is safe for
// concurrent use.
type Cache struct {
	Dir string

	mu     sync.Mutex
	loaded map[string]*Template
}

// NewCache returns a cache reading user templates from dir; dir may be empty.
func NewCache(dir string) *Cache {
	return &Cache{Dir: dir, loaded: map[string]*Template{}}
}

// GetOrLoad returns the cached template or loads it from Dir, falling back to
// the built-in set.
func (c *Cache) GetOrLoad(id string) (*Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded == nil {
		c.loaded = map[string]*Template{}
	}
	if t, ok := c.loaded[id]; ok {
		return t, nil
	}
	t, err := c.load(id)
	if err != nil {
		return nil, err
	}
	c.loaded[id] = t
	return t, nil
}

// Invalidate drops one template; the next GetOrLoad reads it again.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.loaded, id)
}

// Reset drops every cached template.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = map[string]*Template{}
}

// Cached reports whether id is currently held.
func (c *Cache) Cached(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.loaded[id]
	return ok
}

// Summary describes a template for listings.
type Summary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Builtin     bool     `json:"builtin"`
	Layouts     []string `json:"layouts"`
}

// List loads every known template and returns summaries in natural id order.
// Broken files are skipped and reported together in the returned error.
func (c *Cache) List() ([]Summary, error) {
	ids := map[string]bool{}
	for _, id := range BuiltinIDs() {
		ids[id] = true
	}
	user, err := c.userIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range user {
		ids[id] = true
	}

	keys := make([]string, 0, len(ids))
	for id := range ids {
		keys = append(keys, id)
	}
	sort.Sort(natural.StringSlice(keys))

	var (
		out  []Summary
		errs error
	)
	for _, id := range keys {
		t, err := c.GetOrLoad(id)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, Summary{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Category:    t.Category,
			Builtin:     isBuiltin(id) && !c.hasUserFile(id),
			Layouts:     t.LayoutNames(),
		})
	}
	return out, errs
}

func (c *Cache) load(id string) (*Template, error) {
	if strings.ContainsAny(id, `/\`) || id == "" || id == "." || id == ".." {
		return nil, fmt.Errorf("bad template id %q", id)
	}
	if path := c.userFile(id); path != "" {
		return LoadFile(path)
	}
	return loadBuiltin(id)
}

func (c *Cache) userFile(id string) string {
	if c.Dir == "" {
		return ""
	}
	for _, ext := range Extensions {
		path := filepath.Join(c.Dir, id+ext)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path
		}
	}
	return ""
}

func (c *Cache) hasUserFile(id string) bool { return c.userFile(id) != "" }

func (c *Cache) userIDs() ([]string, error) {
	if c.Dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to list templates: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		for _, known := range Extensions {
			if ext == known {
				ids = append(ids, strings.TrimSuffix(name, filepath.Ext(name)))
				break
			}
		}
	}
	return ids, nil
}
