package catalog

import (
	"fmt"
	"strings"

	"github.com/maplecart/api/internal/domain"
)

// InvalidAttributeError reports an attribute that cannot participate in
// variant generation, identifying it by name.
type InvalidAttributeError struct {
	Attribute string
	Reason    string
}

// Error implements the error interface.
func (e *InvalidAttributeError) Error() string {
	return fmt.Sprintf("catalog: invalid attribute %q: %s", e.Attribute, e.Reason)
}

// EstimateCount returns the number of variants Generate would produce for the
// attribute set: the product of the value counts. Zero attributes estimate to
// zero, matching Generate's empty result. The admin surface uses this to warn
// the operator before generating a combinatorially large variant table.
func EstimateCount(attrs []domain.Attribute) int {
	if len(attrs) == 0 {
		return 0
	}
	count := 1
	for _, attr := range attrs {
		count *= len(attr.Values)
	}
	return count
}

// Generate enumerates the full Cartesian product of the attribute value sets
// and returns one variant per combination, in row-major order (first attribute
// outermost). Every variant starts at basePrice with zero stock; the operator
// edits price and stock afterwards. An empty attribute list yields an empty
// result, not a single option-less variant. An attribute with no values fails
// with InvalidAttributeError rather than silently producing nothing.
func Generate(attrs []domain.Attribute, basePrice int64) ([]domain.Variant, error) {
	if err := validateAttributes(attrs); err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return nil, nil
	}

	variants := make([]domain.Variant, 0, EstimateCount(attrs))
	path := make([]domain.OptionPair, len(attrs))

	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(attrs) {
			// Each emitted variant owns its own copy of the option path; the
			// shared accumulator keeps mutating as the walk continues.
			options := make([]domain.OptionPair, len(path))
			copy(options, path)
			variants = append(variants, domain.Variant{
				DisplayName: displayName(options),
				Options:     options,
				Price:       basePrice,
				Stock:       0,
			})
			return
		}
		for _, value := range attrs[depth].Values {
			path[depth] = domain.OptionPair{Attribute: attrs[depth].Name, Value: value}
			walk(depth + 1)
		}
	}
	walk(0)

	return variants, nil
}

func validateAttributes(attrs []domain.Attribute) error {
	seen := make(map[string]struct{}, len(attrs))
	for _, attr := range attrs {
		name := strings.TrimSpace(attr.Name)
		if name == "" {
			return &InvalidAttributeError{Attribute: attr.Name, Reason: "name is required"}
		}
		if len(attr.Values) == 0 {
			return &InvalidAttributeError{Attribute: name, Reason: "no values supplied"}
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return &InvalidAttributeError{Attribute: name, Reason: "duplicate attribute name"}
		}
		seen[key] = struct{}{}
	}
	return nil
}

// displayName joins option pairs as "attr1: val1, attr2: val2" in attribute
// order. The join is deterministic so regenerating the same attribute set
// yields textually identical variants.
func displayName(options []domain.OptionPair) string {
	parts := make([]string, 0, len(options))
	for _, opt := range options {
		parts = append(parts, fmt.Sprintf("%s: %s", opt.Attribute, opt.Value))
	}
	return strings.Join(parts, ", ")
}

// ParseAttribute builds an Attribute from the raw admin form inputs: an
// attribute name plus a comma-separated value list. Blank entries are dropped
// and duplicate values (case-insensitive) are collapsed while preserving the
// order of first appearance.
func ParseAttribute(name string, rawValues string) (domain.Attribute, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Attribute{}, &InvalidAttributeError{Attribute: name, Reason: "name is required"}
	}

	seen := make(map[string]struct{})
	var values []string
	for _, part := range strings.Split(rawValues, ",") {
		value := strings.TrimSpace(part)
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		values = append(values, value)
	}
	if len(values) == 0 {
		return domain.Attribute{}, &InvalidAttributeError{Attribute: name, Reason: "no values supplied"}
	}
	return domain.Attribute{Name: name, Values: values}, nil
}
