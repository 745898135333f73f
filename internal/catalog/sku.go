package catalog

import (
	"strings"

	"github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/platform/textutil"
)

// AssignSKUs stamps a deterministic SKU onto each variant derived from the
// product slug and the slugged option values, e.g. "mug-red-small". Variants
// that already carry a SKU (operator-assigned or migrated) keep it. The input
// slice is modified in place and returned for chaining.
func AssignSKUs(productSlug string, variants []domain.Variant) []domain.Variant {
	prefix := textutil.Slugify(productSlug)
	for i := range variants {
		if strings.TrimSpace(variants[i].SKU) != "" {
			continue
		}
		parts := make([]string, 0, len(variants[i].Options)+1)
		if prefix != "" {
			parts = append(parts, prefix)
		}
		for _, opt := range variants[i].Options {
			if slug := textutil.Slugify(opt.Value); slug != "" {
				parts = append(parts, slug)
			}
		}
		variants[i].SKU = strings.Join(parts, "-")
	}
	return variants
}
