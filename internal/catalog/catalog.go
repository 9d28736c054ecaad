// Package catalog holds the static content packs and the lock selector
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"

	"gopkg.in/yaml.v3"

	"lockbox/internal/domain"
)

//go:embed packs/*.yaml
var packFS embed.FS

// packFile is the on-disk shape of one pack
type packFile struct {
	Name  string               `yaml:"name"`
	Title string               `yaml:"title"`
	Items []domain.ContentItem `yaml:"items"`
	Keys  []domain.KeyItem     `yaml:"keys"`
}

// PackInfo describes a pack for lobby configuration
type PackInfo struct {
	Name      string   `json:"name"`
	Title     string   `json:"title"`
	ItemCount int      `json:"itemCount"`
	Tags      []string `json:"tags"`
}

// Catalog is the read-only content set, partitioned by pack name
type Catalog struct {
	packs  map[string][]domain.ContentItem
	titles map[string]string
	order  []string
	keys   map[int]domain.KeyItem
	items  map[int]domain.ContentItem
}

// Default loads the packs embedded in the binary
func Default() (*Catalog, error) {
	sub, err := fs.Sub(packFS, "packs")
	if err != nil {
		return nil, fmt.Errorf("opening embedded packs: %w", err)
	}
	return Load(sub)
}

// Load reads every *.yaml pack at the root of fsys and validates the result
func Load(fsys fs.FS) (*Catalog, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("listing packs: %w", err)
	}
	slices.Sort(names)

	c := &Catalog{
		packs:  make(map[string][]domain.ContentItem),
		titles: make(map[string]string),
		keys:   make(map[int]domain.KeyItem),
		items:  make(map[int]domain.ContentItem),
	}

	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading pack %s: %w", name, err)
		}

		var pf packFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parsing pack %s: %w", name, err)
		}
		if pf.Name == "" {
			pf.Name = name[:len(name)-len(path.Ext(name))]
		}

		if err := c.add(pf); err != nil {
			return nil, fmt.Errorf("pack %s: %w", name, err)
		}
	}

	for _, k := range c.keys {
		if _, ok := c.items[k.LinkedContentID]; !ok {
			return nil, fmt.Errorf("key %d links unknown content %d", k.ID, k.LinkedContentID)
		}
	}

	return c, nil
}

func (c *Catalog) add(pf packFile) error {
	if pf.Name == domain.MixedPack {
		return fmt.Errorf("pack name %q is reserved", pf.Name)
	}
	if _, exists := c.packs[pf.Name]; exists {
		return fmt.Errorf("duplicate pack name %q", pf.Name)
	}

	items := make([]domain.ContentItem, 0, len(pf.Items))
	for _, it := range pf.Items {
		if it.ID <= domain.NoLock {
			return fmt.Errorf("item %q: id must be positive", it.Title)
		}
		if _, dup := c.items[it.ID]; dup {
			return fmt.Errorf("duplicate content id %d", it.ID)
		}
		if !it.Difficulty.Valid() {
			return fmt.Errorf("item %d: unknown difficulty %q", it.ID, it.Difficulty)
		}
		c.items[it.ID] = it
		items = append(items, it)
	}

	for _, k := range pf.Keys {
		if _, dup := c.keys[k.LinkedContentID]; dup {
			return fmt.Errorf("content %d has more than one key", k.LinkedContentID)
		}
		c.keys[k.LinkedContentID] = k
	}

	title := pf.Title
	if title == "" {
		title = pf.Name
	}

	c.packs[pf.Name] = items
	c.titles[pf.Name] = title
	c.order = append(c.order, pf.Name)
	return nil
}

// Pack returns the items of a named pack
func (c *Catalog) Pack(name string) ([]domain.ContentItem, bool) {
	items, ok := c.packs[name]
	return items, ok
}

// All returns the union of every pack in catalog order
func (c *Catalog) All() []domain.ContentItem {
	all := make([]domain.ContentItem, 0, len(c.items))
	for _, name := range c.order {
		all = append(all, c.packs[name]...)
	}
	return all
}

// KeyFor returns the key explaining a content item
func (c *Catalog) KeyFor(contentID int) (domain.KeyItem, bool) {
	k, ok := c.keys[contentID]
	return k, ok
}

// Has reports whether pack is a known pack name or the mixed pack
func (c *Catalog) Has(pack string) bool {
	if pack == domain.MixedPack {
		return true
	}
	_, ok := c.packs[pack]
	return ok
}

// Packs lists the packs in catalog order
func (c *Catalog) Packs() []PackInfo {
	infos := make([]PackInfo, 0, len(c.order))
	for _, name := range c.order {
		items := c.packs[name]
		tags := make([]string, 0)
		for _, it := range items {
			tags = append(tags, it.Tags...)
		}
		slices.Sort(tags)

		infos = append(infos, PackInfo{
			Name:      name,
			Title:     c.titles[name],
			ItemCount: len(items),
			Tags:      slices.Compact(tags),
		})
	}
	return infos
}
