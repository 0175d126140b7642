package repositories

import (
	"context"

	"vendorapi/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// GetAllByVendor returns the vendor's products oldest first. A vendor without
	// products yields an empty, non-nil slice.
	GetAllByVendor(ctx context.Context, vendorID string) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// Save assigns an ID when missing and stamps CreateDate/UpdatedDate.
	Save(ctx context.Context, product *models.Product) error
	// Update applies a sparse patch to the product owned by patch.VendorID and
	// returns the stored result. ErrProductNotFound covers both a missing ID and
	// a product owned by another vendor.
	Update(ctx context.Context, patch models.ProductPatch) (*models.Product, error)
}
