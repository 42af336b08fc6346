package service

import (
	"context"
	"errors"
	"fmt"

	"marketplace-service/internal/models"
	"marketplace-service/internal/redisclient"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// CatalogService handles product catalog business logic
type CatalogService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, redis *redisclient.Client) *CatalogService {
	return &CatalogService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Status      string          `json:"status"`
}

func validateNewProduct(req *CreateProductRequest) error {
	if req.Name == "" {
		return NewValidationError("name must not be empty")
	}
	if !req.Price.IsPositive() {
		return NewValidationError("price must be positive, got %s", req.Price)
	}
	if req.Stock < 0 {
		return NewValidationError("stock must not be negative, got %d", req.Stock)
	}
	if req.Status == "" {
		req.Status = models.ProductStatusDraft
	}
	if !models.ValidProductStatus(req.Status) {
		return NewValidationError("unknown status: %s", req.Status)
	}
	return nil
}

func validatePatch(patch *models.ProductPatch) error {
	if patch.IsEmpty() {
		return NewValidationError("at least one field must be supplied")
	}
	if patch.Name != nil && *patch.Name == "" {
		return NewValidationError("name must not be empty")
	}
	if patch.Price != nil && !patch.Price.IsPositive() {
		return NewValidationError("price must be positive, got %s", patch.Price)
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return NewValidationError("stock must not be negative, got %d", *patch.Stock)
	}
	if patch.Status != nil && !models.ValidProductStatus(*patch.Status) {
		return NewValidationError("unknown status: %s", *patch.Status)
	}
	return nil
}

// Create validates and persists a new product for the caller's store.
// The generated id is part of the returned product.
func (s *CatalogService) Create(ctx context.Context, storeID string, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Create")
	defer span.End()

	if err := validateNewProduct(req); err != nil {
		util.ProductWritesFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New().String(),
		StoreID:     storeID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Status:      req.Status,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		util.ProductWritesFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("store_id", storeID))

	return product, nil
}

// Get retrieves a product by id, scoped to the caller's store, consulting
// the Redis cache first.
func (s *CatalogService) Get(ctx context.Context, storeID, id string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Get")
	defer span.End()

	if cached, err := s.redis.GetCachedProduct(ctx, storeID, id); err == nil && cached != nil {
		util.ProductCacheHitsTotal.Inc()
		return cached, nil
	}

	product, err := s.store.GetProduct(ctx, storeID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.redis.CacheProduct(ctx, product); err != nil {
		s.logger.Warn("Failed to cache product",
			zap.String("product_id", id), zap.Error(err))
	}

	return product, nil
}

// GetPublished retrieves a published product by id regardless of owning
// store. Used by the storefront cart.
func (s *CatalogService) GetPublished(ctx context.Context, id string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetPublished")
	defer span.End()

	product, err := s.store.GetPublishedProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Update applies a partial update and returns the refreshed product. The
// refetch is a separate read-only statement, not atomic with the write.
func (s *CatalogService) Update(ctx context.Context, storeID, id string, patch *models.ProductPatch) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Update")
	defer span.End()

	if err := validatePatch(patch); err != nil {
		util.ProductWritesFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	err := s.store.UpdateProduct(ctx, storeID, id, patch)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}
	if err != nil {
		util.ProductWritesFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if err := s.redis.InvalidateProduct(ctx, storeID, id); err != nil {
		s.logger.Warn("Failed to invalidate product cache",
			zap.String("product_id", id), zap.Error(err))
	}

	util.ProductsUpdatedTotal.Inc()

	product, err := s.store.GetProduct(ctx, storeID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}
	return product, nil
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func clampLimit(limit int) int {
	if limit < 1 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// List returns up to limit products for the caller's store, newest first.
// The limit is capped at MaxPageSize.
func (s *CatalogService) List(ctx context.Context, storeID string, page, limit int) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.List")
	defer span.End()

	page = clampPage(page)
	limit = clampLimit(limit)
	offset := (page - 1) * limit

	products, err := s.store.ListProducts(ctx, storeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
