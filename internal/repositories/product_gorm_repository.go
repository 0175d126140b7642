package repositories

import (
	"context"
	"time"

	"vendorapi/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAllByVendor retrieves every product owned by vendorID.
func (r *GORMProductRepository) GetAllByVendor(ctx context.Context, vendorID string) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("create_date ASC, id ASC").
		Find(&products).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list products of vendor %s", vendorID)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, errors.Wrapf(err, "failed to get product %s", id)
	}
	return &product, nil
}

// Save inserts a new product.
func (r *GORMProductRepository) Save(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return errors.Wrap(err, "failed to save product")
	}
	return nil
}

// Update writes only the columns present in the patch, plus updated_date.
func (r *GORMProductRepository) Update(ctx context.Context, patch models.ProductPatch) (*models.Product, error) {
	cols := patch.Columns()
	cols["updated_date"] = time.Now()

	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND vendor_id = ?", patch.ID, patch.VendorID).
		Updates(cols)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "failed to update product %s", patch.ID)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}
	return r.GetByID(ctx, patch.ID)
}
