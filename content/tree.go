// Package content implements a YAML-backed page tree satisfying the
// pagetlai node contract. It lets the CLI and tests run translations
// against content stored in a plain file.
package content

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// SaveRecord describes one persisted save.
type SaveRecord struct {
	NodeID string
	Fields []string
}

// SaveHook is called before every save is recorded. A non-nil error aborts
// the save.
type SaveHook func(ctx context.Context, nodeID string, fields []string) error

// Tree is a page tree loaded from YAML.
type Tree struct {
	root *Page
	path string
	hook SaveHook

	now func() time.Time

	mu    sync.Mutex
	saves []SaveRecord
}

// Load reads a page tree from a YAML file. Saves are written back to it.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	t.path = path
	return t, nil
}

// Parse decodes a page tree. The tree is kept in memory only.
func Parse(data []byte) (*Tree, error) {
	var root Page
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.RecordID == "" {
		return nil, fmt.Errorf("root page has no id")
	}

	t := &Tree{root: &root, now: time.Now}
	t.bindPage(&root)
	return t, nil
}

// Root returns the root page.
func (t *Tree) Root() *Page {
	return t.root
}

// Find returns the page with the given id, searching the whole tree.
func (t *Tree) Find(id string) (*Page, bool) {
	var find func(*Page) *Page
	find = func(p *Page) *Page {
		if p.RecordID == id {
			return p
		}
		for _, child := range p.Subpage {
			if found := find(child); found != nil {
				return found
			}
		}
		return nil
	}

	p := find(t.root)
	return p, p != nil
}

// SetSaveHook installs a hook consulted before every save.
func (t *Tree) SetSaveHook(hook SaveHook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hook = hook
}

// SetClock replaces the clock used to stamp saved pages.
func (t *Tree) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// Saves returns every save recorded so far, in order.
func (t *Tree) Saves() []SaveRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]SaveRecord(nil), t.saves...)
}

// Marshal encodes the tree as YAML.
func (t *Tree) Marshal() ([]byte, error) {
	return yaml.Marshal(t.root)
}

// WriteFile writes the tree to path.
func (t *Tree) WriteFile(path string) error {
	data, err := t.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling page tree: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// recordSave records a save and stamps the page owning the saved record
// as modified.
func (t *Tree) recordSave(ctx context.Context, page *Page, nodeID string, fields []string) error {
	t.mu.Lock()
	hook := t.hook
	t.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, nodeID, fields); err != nil {
			return err
		}
	}

	t.mu.Lock()
	t.saves = append(t.saves, SaveRecord{NodeID: nodeID, Fields: append([]string(nil), fields...)})
	if page != nil {
		page.ModifiedAt = t.now().UTC().Truncate(time.Second)
	}
	t.mu.Unlock()

	if t.path == "" {
		return nil
	}
	return t.WriteFile(t.path)
}

func (t *Tree) bindPage(p *Page) {
	t.bindRecord(&p.Record, p)
	for _, child := range p.Subpage {
		t.bindPage(child)
	}
}

func (t *Tree) bindRecord(r *Record, page *Page) {
	r.tree = t
	r.page = page
	for _, f := range r.FieldList {
		for _, item := range f.Items {
			t.bindRecord(item, page)
		}
		if f.Page != nil {
			t.bindRecord(f.Page, page)
		}
		for _, file := range f.Files {
			file.owner = r
		}
	}
}
