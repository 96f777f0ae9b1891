// Package catalog holds the static suggested queries shown for each topic
// category.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultCatalog []byte

type Category struct {
	Name             string   `yaml:"name" json:"category"`
	SuggestedQueries []string `yaml:"suggested_queries" json:"suggested_queries"`
}

type Catalog struct {
	order  []string
	byName map[string]Category
}

// Default parses the embedded categories.yaml.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{byName: make(map[string]Category, len(doc.Categories))}
	for _, cat := range doc.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("parse catalog: category without a name")
		}
		if _, dup := c.byName[cat.Name]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate category %q", cat.Name)
		}
		c.byName[cat.Name] = cat
		c.order = append(c.order, cat.Name)
	}
	return c, nil
}

func (c *Catalog) Get(name string) (Category, bool) {
	cat, ok := c.byName[name]
	return cat, ok
}

// Names lists categories in file order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}
