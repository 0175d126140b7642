package handlers

import (
	"errors"

	"vendorapi/internal/middleware"
	"vendorapi/internal/models"
	"vendorapi/internal/repositories"
	"vendorapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	msgProductAdded    = "Product successfully added."
	msgProductUpdated  = "Product successfully updated."
	msgProductNotFound = "Product not found."
)

// CreateProductRequest is the body of POST /product/vendor/:vendorId. Every key
// must be present, though an empty string is accepted. Any vendor_id in the body
// is ignored in favour of the path.
type CreateProductRequest struct {
	ProductName    *string `json:"product_name" validate:"required"`
	Department     *string `json:"department" validate:"required"`
	BudgetOwner    *string `json:"budget_owner" validate:"required"`
	ProductOwner   *string `json:"product_owner" validate:"required"`
	ExpirationDate *string `json:"expiration_date" validate:"required"`
	PaymentMethod  *string `json:"payment_method" validate:"required"`
	ProductType    *string `json:"product_type" validate:"required"`
	Status         *string `json:"status" validate:"required"`
	UserBy         *string `json:"user_by" validate:"required"`
}

// UpdateProductRequest is the body of PUT /product/vendor/:vendorId. Only id is
// mandatory; a nil field was absent from the body.
type UpdateProductRequest struct {
	ID             string  `json:"id" validate:"required"`
	ProductName    *string `json:"product_name"`
	Department     *string `json:"department"`
	BudgetOwner    *string `json:"budget_owner"`
	ProductOwner   *string `json:"product_owner"`
	ExpirationDate *string `json:"expiration_date"`
	PaymentMethod  *string `json:"payment_method"`
	ProductType    *string `json:"product_type"`
	Status         *string `json:"status"`
	UserBy         *string `json:"user_by"`
}

// ProductListResponse wraps a vendor's products in the "productlist" envelope.
type ProductListResponse struct {
	ProductList []models.Product `json:"productlist"`
}

func (r *CreateProductRequest) toProduct(vendorID string) (*models.Product, error) {
	expirationDate, err := models.ParseDate(*r.ExpirationDate)
	if err != nil {
		return nil, err
	}
	return &models.Product{
		VendorID:       vendorID,
		ProductName:    *r.ProductName,
		Department:     *r.Department,
		BudgetOwner:    *r.BudgetOwner,
		ProductOwner:   *r.ProductOwner,
		ExpirationDate: expirationDate,
		PaymentMethod:  *r.PaymentMethod,
		ProductType:    *r.ProductType,
		Status:         *r.Status,
		UserBy:         *r.UserBy,
	}, nil
}

func (r *UpdateProductRequest) toPatch(vendorID string) (models.ProductPatch, error) {
	patch := models.ProductPatch{
		ID:            r.ID,
		VendorID:      vendorID,
		ProductName:   r.ProductName,
		Department:    r.Department,
		BudgetOwner:   r.BudgetOwner,
		ProductOwner:  r.ProductOwner,
		PaymentMethod: r.PaymentMethod,
		ProductType:   r.ProductType,
		Status:        r.Status,
		UserBy:        r.UserBy,
	}
	if r.ExpirationDate != nil {
		expirationDate, err := models.ParseDate(*r.ExpirationDate)
		if err != nil {
			return models.ProductPatch{}, err
		}
		patch.ExpirationDate = &expirationDate
	}
	return patch, nil
}

// ProductHandler handles HTTP requests for a vendor's products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	log      zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: middleware.NewValidator(),
		log:      log.With().Str("component", "product_handler").Logger(),
	}
}

// RegisterRoutes mounts the product routes. Every route runs auth first, then
// the body schema check where there is a body, then the handler.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	productRoutes := router.Group("/product")
	productRoutes.Get("/vendor/:vendorId", auth, h.HandleListVendorProducts)
	productRoutes.Post("/vendor/:vendorId", auth,
		middleware.ValidateBody[CreateProductRequest](h.validate), h.HandleCreateProduct)
	productRoutes.Put("/vendor/:vendorId", auth,
		middleware.ValidateBody[UpdateProductRequest](h.validate), h.HandleUpdateProduct)
	productRoutes.Get("/:productId", auth, h.HandleGetProduct)
}

// HandleListVendorProducts returns every product of the vendor.
func (h *ProductHandler) HandleListVendorProducts(c *fiber.Ctx) error {
	vendorID := c.Params("vendorId")
	products, err := h.service.ListVendorProducts(c.UserContext(), vendorID)
	if err != nil {
		h.log.Error().Stack().Err(err).Str("vendor_id", vendorID).Msg("listing products failed")
		return internalError(c)
	}
	return c.JSON(ProductListResponse{ProductList: products})
}

// HandleCreateProduct adds a product to the vendor named in the path.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	vendorID := c.Params("vendorId")
	req := middleware.Body[CreateProductRequest](c)
	if req == nil {
		h.log.Error().Str("vendor_id", vendorID).Msg("create route is missing its body stage")
		return internalError(c)
	}

	product, err := req.toProduct(vendorID)
	if err != nil {
		h.log.Error().Err(err).Str("vendor_id", vendorID).Msg("creating product failed")
		return internalError(c)
	}

	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		h.log.Error().Stack().Err(err).Str("vendor_id", vendorID).Msg("creating product failed")
		return internalError(c)
	}

	return respond(c, fiber.StatusCreated, statusSuccess, msgProductAdded)
}

// HandleUpdateProduct applies a partial update to a product of the vendor.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	vendorID := c.Params("vendorId")
	req := middleware.Body[UpdateProductRequest](c)
	if req == nil {
		h.log.Error().Str("vendor_id", vendorID).Msg("update route is missing its body stage")
		return internalError(c)
	}

	patch, err := req.toPatch(vendorID)
	if err != nil {
		h.log.Error().Err(err).Str("vendor_id", vendorID).Str("product_id", req.ID).Msg("updating product failed")
		return internalError(c)
	}

	if _, err := h.service.UpdateProduct(c.UserContext(), patch); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return respond(c, fiber.StatusNotFound, statusFail, msgProductNotFound)
		}
		h.log.Error().Stack().Err(err).Str("vendor_id", vendorID).Str("product_id", req.ID).Msg("updating product failed")
		return internalError(c)
	}

	return respond(c, fiber.StatusOK, statusSuccess, msgProductUpdated)
}

// HandleGetProduct returns one product. Only "not found" is handled here; any
// other failure is left to the app-wide error handler.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return respond(c, fiber.StatusNotFound, statusFail, msgProductNotFound)
		}
		return err
	}
	return c.JSON(product)
}
