package services

import (
	"context"
	"encoding/json"
	"time"

	"vendorapi/internal/models"
	"vendorapi/internal/repositories"

	"github.com/rs/zerolog"
)

// EventPublisher delivers encoded product events under a routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	log       zerolog.Logger
}

// NewProductService creates a new ProductService. publisher may be nil, in which
// case no events are emitted.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, log zerolog.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		log:       log.With().Str("component", "product_service").Logger(),
	}
}

// ListVendorProducts retrieves all products owned by vendorID, never nil.
func (s *ProductService) ListVendorProducts(ctx context.Context, vendorID string) ([]models.Product, error) {
	products, err := s.repo.GetAllByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct stores a new product. ID and timestamps are assigned by the repository.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = ""
	if err := s.repo.Save(ctx, product); err != nil {
		return err
	}
	s.emit(models.ProductCreated, product.ID, product.VendorID)
	return nil
}

// UpdateProduct applies a partial update and returns the stored product.
func (s *ProductService) UpdateProduct(ctx context.Context, patch models.ProductPatch) (*models.Product, error) {
	product, err := s.repo.Update(ctx, patch)
	if err != nil {
		return nil, err
	}
	s.emit(models.ProductUpdated, product.ID, product.VendorID)
	return product, nil
}

// emit publishes best-effort; a broker failure never fails the write.
func (s *ProductService) emit(eventType, productID, vendorID string) {
	if s.publisher == nil {
		s.log.Debug().Str("event", eventType).Msg("no event publisher configured, skipping")
		return
	}

	body, err := json.Marshal(models.ProductEvent{
		Type:       eventType,
		ProductID:  productID,
		VendorID:   vendorID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("event", eventType).Msg("failed to encode product event")
		return
	}

	if err := s.publisher.Publish(eventType, body); err != nil {
		s.log.Warn().Err(err).
			Str("event", eventType).
			Str("product_id", productID).
			Msg("failed to publish product event")
		return
	}
	s.log.Debug().Str("event", eventType).Str("product_id", productID).Msg("product event published")
}
