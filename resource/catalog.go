package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kasuganosora/slotgrid/game/item"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrItemNotFound is returned when an item ID is missing from the catalog.
var ErrItemNotFound = errors.New("resource: item not found")

// catalogFile is the on-disk layout of an item catalog.
type catalogFile struct {
	Items []*item.Definition `json:"items" yaml:"items"`
}

// Catalog maps item IDs to their static definitions.
type Catalog struct {
	items  map[string]*item.Definition
	order  []string
	logger *zap.Logger
}

// NewCatalog builds a Catalog from defs. Entries with an empty ID or a
// non-positive max stack size are rejected; repeated IDs keep the first entry.
func NewCatalog(logger *zap.Logger, defs ...*item.Definition) (*Catalog, error) {
	c := &Catalog{
		items:  make(map[string]*item.Definition, len(defs)),
		logger: logger,
	}
	for _, d := range defs {
		if d == nil || d.ID == "" {
			return nil, errors.New("resource: item definition without id")
		}
		if d.MaxStackSize <= 0 {
			return nil, fmt.Errorf("resource: item %s: max_stack_size must be positive", d.ID)
		}
		if _, dup := c.items[d.ID]; dup {
			logger.Warn("duplicate item id in catalog", zap.String("item_id", d.ID))
			continue
		}
		c.items[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	return c, nil
}

// LoadCatalog reads a catalog file. ".yaml"/".yml" files are parsed as YAML,
// everything else as JSON.
func LoadCatalog(path string, logger *zap.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resource: read %s: %w", path, err)
	}
	var f catalogFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("resource: parse %s: %w", path, err)
	}
	return NewCatalog(logger, f.Items...)
}

// Lookup returns the definition for id.
func (c *Catalog) Lookup(id string) (*item.Definition, error) {
	if d, ok := c.items[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// Items returns the definitions in file order.
func (c *Catalog) Items() []*item.Definition {
	out := make([]*item.Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// Len returns the number of distinct items.
func (c *Catalog) Len() int { return len(c.items) }
