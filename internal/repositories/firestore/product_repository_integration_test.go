//go:build integration

package firestore

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/maplecart/api/internal/domain"
	pconfig "github.com/maplecart/api/internal/platform/config"
	pfirestore "github.com/maplecart/api/internal/platform/firestore"
	"github.com/maplecart/api/internal/repositories"
)

func TestProductRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available: " + err.Error())
	}

	ensureDockerDaemon(t)

	port := freePort(t)
	endpoint := fmt.Sprintf("127.0.0.1:%d", port)
	containerID := startFirestoreEmulator(t, port)
	t.Cleanup(func() { stopContainer(containerID) })

	waitForEndpoint(t, endpoint, 30*time.Second)

	cfg := pconfig.FirestoreConfig{
		ProjectID:    "catalog-test",
		EmulatorHost: endpoint,
	}

	provider := pfirestore.NewProvider(cfg)
	t.Cleanup(func() {
		_ = provider.Close(context.Background())
	})

	repo, err := NewProductRepository(provider)
	if err != nil {
		t.Fatalf("new product repository: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	seed := []domain.Product{
		{ID: "prod-1", Slug: "classic-tee", Name: "Classic Tee", CategoryID: "cat-apparel", Status: domain.ProductStatusActive, CreatedAt: now, UpdatedAt: now},
		{ID: "prod-2", Slug: "winter-hoodie", Name: "Winter Hoodie", CategoryID: "cat-apparel", Status: domain.ProductStatusActive, CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second)},
		{ID: "prod-3", Slug: "retired-cap", Name: "Retired Cap", CategoryID: "cat-apparel", Status: domain.ProductStatusArchived, CreatedAt: now.Add(2 * time.Second), UpdatedAt: now.Add(2 * time.Second)},
		{ID: "prod-4", Slug: "steel-mug", Name: "Steel Mug", CategoryID: "cat-kitchen", Status: domain.ProductStatusActive, CreatedAt: now.Add(3 * time.Second), UpdatedAt: now.Add(3 * time.Second)},
	}
	for _, product := range seed {
		if err := repo.Insert(ctx, product); err != nil {
			t.Fatalf("insert %s: %v", product.ID, err)
		}
	}

	// Aggregation counts only active products in the category.
	count, err := repo.CountActiveByCategory(ctx, "cat-apparel")
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 active apparel products, got %d", count)
	}

	// The deletion guard sees archived products too.
	exists, err := repo.ExistsByCategory(ctx, "cat-apparel")
	if err != nil {
		t.Fatalf("exists by category: %v", err)
	}
	if !exists {
		t.Fatal("expected apparel category to be referenced")
	}
	exists, err = repo.ExistsByCategory(ctx, "cat-empty")
	if err != nil {
		t.Fatalf("exists by empty category: %v", err)
	}
	if exists {
		t.Fatal("expected no references for empty category")
	}

	// Slug lookup round trip.
	found, err := repo.FindBySlug(ctx, "winter-hoodie")
	if err != nil {
		t.Fatalf("find by slug: %v", err)
	}
	if found.ID != "prod-2" {
		t.Fatalf("expected prod-2, got %s", found.ID)
	}
	_, err = repo.FindBySlug(ctx, "missing-slug")
	var repoErr repositories.RepositoryError
	if err == nil {
		t.Fatal("expected missing slug to error")
	}
	if !errors.As(err, &repoErr) || !repoErr.IsNotFound() {
		t.Fatalf("expected not found error, got %v", err)
	}

	// Cursor pagination walks the collection newest-first without overlap.
	var collected []string
	token := ""
	for {
		page, err := repo.List(ctx, repositories.ProductListFilter{
			Pagination: domain.Pagination{PageSize: 2, PageToken: token},
		})
		if err != nil {
			t.Fatalf("list page: %v", err)
		}
		for _, item := range page.Items {
			collected = append(collected, item.ID)
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	expected := []string{"prod-4", "prod-3", "prod-2", "prod-1"}
	if len(collected) != len(expected) {
		t.Fatalf("expected %d products, got %v", len(expected), collected)
	}
	for i, id := range expected {
		if collected[i] != id {
			t.Fatalf("expected %s at position %d, got %v", id, i, collected)
		}
	}
}
