package greenstar

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrEmptyCatalog = errors.New("greenstar: catalog has no credits")

// LoadCatalog decodes a YAML catalog and fills in missing categories.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var cat Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if len(cat.Credits) == 0 {
		return nil, ErrEmptyCatalog
	}
	cat.AssignCategories()
	return &cat, nil
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCatalog(f)
}

// WriteCatalog encodes cat as YAML.
func WriteCatalog(w io.Writer, cat *Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cat); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return enc.Close()
}

// AssignCategories sets the category of every credit that has none.
func (c *Catalog) AssignCategories() {
	for i := range c.Credits {
		if c.Credits[i].Category == "" {
			c.Credits[i].Category = FindCategory(c.Credits[i].SheetName).Name
		}
	}
}

// ByCategory groups credit indexes by category in display order; credits
// of no known category come last under Other.
func (c *Catalog) ByCategory() []CategoryCredits {
	all := append(append([]Category(nil), Categories...), OtherCategory)
	var out []CategoryCredits
	for _, cat := range all {
		cc := CategoryCredits{Category: cat}
		for i, cr := range c.Credits {
			if cr.Category == cat.Name {
				cc.Indexes = append(cc.Indexes, i)
			}
		}
		if len(cc.Indexes) > 0 {
			out = append(out, cc)
		}
	}
	return out
}

// CategoryCredits lists the credits of one category by index into
// Catalog.Credits.
type CategoryCredits struct {
	Category Category
	Indexes  []int
}
