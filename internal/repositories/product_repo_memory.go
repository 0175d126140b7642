package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"vendorapi/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAllByVendor returns the vendor's products ordered by creation time.
func (r *MemoryProductRepository) GetAllByVendor(_ context.Context, vendorID string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0)
	for _, p := range r.products {
		if p.VendorID == vendorID {
			productList = append(productList, p)
		}
	}
	sort.Slice(productList, func(i, j int) bool {
		if productList[i].CreateDate.Equal(productList[j].CreateDate) {
			return productList[i].ID < productList[j].ID
		}
		return productList[i].CreateDate.Before(productList[j].CreateDate)
	})
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Save adds a new product.
func (r *MemoryProductRepository) Save(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreateDate = now
	product.UpdatedDate = now
	r.products[product.ID] = *product
	return nil
}

// Update applies the patch to a product owned by patch.VendorID.
func (r *MemoryProductRepository) Update(_ context.Context, patch models.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[patch.ID]
	if !ok || product.VendorID != patch.VendorID {
		return nil, ErrProductNotFound
	}
	patch.Apply(&product)
	product.UpdatedDate = time.Now()
	r.products[patch.ID] = product
	return &product, nil
}
