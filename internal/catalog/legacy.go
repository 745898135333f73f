package catalog

import (
	"strings"

	"github.com/maplecart/api/internal/domain"
)

// LegacyVariant is the historical single-axis variant shape ({type, value,
// sku}) that older catalog exports still carry. It is converted once on
// import; no other layer understands this form.
type LegacyVariant struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	SKU   string `json:"sku"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

// ConvertLegacyVariant lifts a legacy record into the canonical variant
// representation. The single type/value pair becomes a one-entry option list
// and the display name follows the same join rule Generate uses, so migrated
// and regenerated variants are textually interchangeable.
func ConvertLegacyVariant(legacy LegacyVariant) domain.Variant {
	attribute := strings.TrimSpace(legacy.Type)
	value := strings.TrimSpace(legacy.Value)

	var options []domain.OptionPair
	if attribute != "" || value != "" {
		options = []domain.OptionPair{{Attribute: attribute, Value: value}}
	}
	return domain.Variant{
		SKU:         strings.TrimSpace(legacy.SKU),
		DisplayName: displayName(options),
		Options:     options,
		Price:       legacy.Price,
		Stock:       legacy.Stock,
	}
}

// ConvertLegacyVariants converts a legacy list in order, skipping records that
// carry neither a type nor a value.
func ConvertLegacyVariants(legacy []LegacyVariant) []domain.Variant {
	if len(legacy) == 0 {
		return nil
	}
	variants := make([]domain.Variant, 0, len(legacy))
	for _, lv := range legacy {
		if strings.TrimSpace(lv.Type) == "" && strings.TrimSpace(lv.Value) == "" {
			continue
		}
		variants = append(variants, ConvertLegacyVariant(lv))
	}
	if len(variants) == 0 {
		return nil
	}
	return variants
}
