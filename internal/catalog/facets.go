// Package catalog provides the per-category facet and stat configuration
// consumed by the search resolver.
package catalog

import (
	"context"
	"errors"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
	"github.com/utafrali/CatalogSearchGo/internal/schema"
)

// FacetConfig maps category IDs to the attribute codes whose facets and
// stats are shown on that category's listing.
type FacetConfig struct {
	Facets map[string][]string
	Stats  map[string][]string
}

// Provider resolves the configured attribute codes to engine fields.
type Provider struct {
	cfg    FacetConfig
	mapper schema.Mapper
}

// NewProvider creates a provider over the given configuration.
func NewProvider(cfg FacetConfig, mapper schema.Mapper) *Provider {
	return &Provider{cfg: cfg, mapper: mapper}
}

// FacetFieldsFor returns the facet fields configured for the category.
// Unresolvable attribute codes are skipped.
func (p *Provider) FacetFieldsFor(_ context.Context, categoryID string) ([]engine.Field, error) {
	return p.resolve(p.cfg.Facets[categoryID])
}

// StatFieldsFor returns the stat fields configured for the category.
func (p *Provider) StatFieldsFor(_ context.Context, categoryID string) ([]engine.Field, error) {
	return p.resolve(p.cfg.Stats[categoryID])
}

func (p *Provider) resolve(codes []string) ([]engine.Field, error) {
	var fields []engine.Field
	for _, code := range codes {
		field, err := p.mapper.FieldByAttribute(code, engine.Value{})
		if err != nil {
			if errors.Is(err, schema.ErrFieldNotFound) {
				continue
			}
			return nil, err
		}
		fields = append(fields, *field)
	}
	return fields, nil
}
