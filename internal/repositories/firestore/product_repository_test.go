package firestore

import (
	"testing"

	"cloud.google.com/go/firestore"

	"github.com/maplecart/api/internal/domain"
)

func TestProductListOrder(t *testing.T) {
	cases := []struct {
		name      string
		sorts     []domain.Sort
		wantField string
		wantDir   firestore.Direction
	}{
		{name: "default newest first", wantField: "createdAt", wantDir: firestore.Desc},
		{
			name:      "updatedAt ascending",
			sorts:     []domain.Sort{{Field: "updatedAt", Direction: domain.SortAsc}},
			wantField: "updatedAt",
			wantDir:   firestore.Asc,
		},
		{
			name:      "createdAt descending",
			sorts:     []domain.Sort{{Field: "createdAt", Direction: domain.SortDesc}},
			wantField: "createdAt",
			wantDir:   firestore.Desc,
		},
		{
			name:      "unindexed field ignored",
			sorts:     []domain.Sort{{Field: "basePrice", Direction: domain.SortAsc}},
			wantField: "createdAt",
			wantDir:   firestore.Desc,
		},
		{
			name: "first indexed field wins",
			sorts: []domain.Sort{
				{Field: "name", Direction: domain.SortAsc},
				{Field: "updatedAt", Direction: domain.SortDesc},
			},
			wantField: "updatedAt",
			wantDir:   firestore.Desc,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			field, dir := productListOrder(tc.sorts)
			if field != tc.wantField || dir != tc.wantDir {
				t.Fatalf("expected (%s, %v), got (%s, %v)", tc.wantField, tc.wantDir, field, dir)
			}
		})
	}
}

func TestDecodeProductLiftsLegacyVariants(t *testing.T) {
	doc := productDocument{
		Slug: "classic-tee",
		Variants: []productVariantDocument{
			{SKU: "classic-tee-black", Type: "Color", Value: "Black", Price: 2500, Stock: 3},
			{
				SKU:         "classic-tee-white-s",
				DisplayName: "Color: White, Size: S",
				Options: []productOptionDocument{
					{Attribute: "Color", Value: "White"},
					{Attribute: "Size", Value: "S"},
				},
				Price: 2600,
			},
		},
	}

	product := decodeProduct("prod-1", doc)

	if len(product.Variants) != 2 {
		t.Fatalf("expected two variants, got %d", len(product.Variants))
	}
	legacy := product.Variants[0]
	if len(legacy.Options) != 1 || legacy.Options[0].Attribute != "Color" || legacy.Options[0].Value != "Black" {
		t.Fatalf("expected legacy pair lifted into options, got %v", legacy.Options)
	}
	if legacy.DisplayName != "Color: Black" {
		t.Fatalf("unexpected display name %q", legacy.DisplayName)
	}
	if legacy.Price != 2500 || legacy.Stock != 3 {
		t.Fatalf("legacy price and stock should carry over, got %+v", legacy)
	}
	modern := product.Variants[1]
	if len(modern.Options) != 2 || modern.DisplayName != "Color: White, Size: S" {
		t.Fatalf("modern variant should decode unchanged, got %+v", modern)
	}
}
