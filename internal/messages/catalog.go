// Package messages provides the string catalog for import reports and
// errors. Templates live in an embedded YAML file and are rendered by plain
// placeholder substitution, keeping formatting a pure function of
// (key, params).
package messages

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed en.yaml
var enCatalog []byte

// Catalog maps message keys to display templates.
type Catalog struct {
	templates map[string]string
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	templates := make(map[string]string)
	if err := yaml.Unmarshal(enCatalog, &templates); err != nil {
		return nil, fmt.Errorf("parse message catalog: %w", err)
	}
	return &Catalog{templates: templates}, nil
}

// MustLoad loads the embedded catalog and panics on error. The catalog is
// compiled in, so a failure here is a build defect.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Format renders the template for key, replacing each {name} placeholder
// with params[name]. Placeholders without a parameter are left intact.
// Unknown keys render as [[key]] so a missing string is visible in the
// output instead of silently dropped.
func (c *Catalog) Format(key string, params map[string]string) string {
	tmpl, ok := c.templates[key]
	if !ok {
		return "[[" + key + "]]"
	}
	for name, value := range params {
		tmpl = strings.ReplaceAll(tmpl, "{"+name+"}", value)
	}
	return tmpl
}

// Has reports whether the catalog defines the given key.
func (c *Catalog) Has(key string) bool {
	_, ok := c.templates[key]
	return ok
}
