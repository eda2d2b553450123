package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
	"github.com/hanamaru-app/hanamaru-backend/pkg/pagination"
)

// Service exposes catalog operations scoped to a store.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	GetByID(ctx context.Context, id, storeID uuid.UUID) (*ProductDTO, error)
	Update(ctx context.Context, id, storeID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id, storeID uuid.UUID) error
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*ProductPage, error)
}

// CreateProductInput captures a new catalog entry. Price is whole yen.
type CreateProductInput struct {
	Name    string
	Price   int
	InStock *bool
}

// UpdateProductInput captures catalog mutations; nil fields are untouched.
type UpdateProductInput struct {
	Name    *string
	Price   *int
	InStock *bool
}

type service struct {
	repo Repository
}

// NewService builds a product service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	product := &models.Product{
		StoreID: storeID,
		Name:    name,
		Price:   input.Price,
		InStock: true,
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating product")
	}
	return toProductDTO(product), nil
}

func (s *service) GetByID(ctx context.Context, id, storeID uuid.UUID) (*ProductDTO, error) {
	product, err := s.find(ctx, id, storeID)
	if err != nil {
		return nil, err
	}
	return toProductDTO(product), nil
}

func (s *service) Update(ctx context.Context, id, storeID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.find(ctx, id, storeID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name must not be empty")
		}
		product.Name = name
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		product.Price = *input.Price
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating product")
	}
	return toProductDTO(product), nil
}

func (s *service) Delete(ctx context.Context, id, storeID uuid.UUID) error {
	if id == uuid.Nil || storeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id and store id are required")
	}
	deleted, err := s.repo.Delete(ctx, id, storeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*ProductPage, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	products, err := s.repo.ListByStore(ctx, storeID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}

	page := &ProductPage{Items: make([]ProductDTO, 0, len(products))}
	hasMore := len(products) > limit
	if hasMore {
		products = products[:limit]
	}
	for i := range products {
		page.Items = append(page.Items, *toProductDTO(&products[i]))
	}
	if hasMore {
		last := products[len(products)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) find(ctx context.Context, id, storeID uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil || storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id and store id are required")
	}
	product, err := s.repo.FindByIDForStore(ctx, id, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	return product, nil
}
