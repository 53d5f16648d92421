package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	verrors "github.com/jpalomar/vendorhub/internal/errors"
	"github.com/jpalomar/vendorhub/internal/store"
)

// ProductService manages the shared product catalog. Every authenticated
// vendor sees and edits the same catalog; ownership applies to clients and
// orders, not products.
type ProductService struct {
	store store.ProductStore
}

// NewProductService creates a new ProductService.
func NewProductService(s store.ProductStore) *ProductService {
	return &ProductService{store: s}
}

// ProductInput represents the data transfer object for creating or fully
// replacing a product.
type ProductInput struct {
	Name   string  `json:"name" validate:"required"`
	Amount int32   `json:"amount" validate:"gte=0"`
	Price  float64 `json:"price" validate:"gte=0"`
}

// FindAll returns the whole catalog.
func (s *ProductService) FindAll(ctx context.Context) ([]ProductDto, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}
	products, err := s.store.FindAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return toProductDtos(products), nil
}

// FindByID retrieves a single product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *ProductService) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}
	p, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductDto(p), nil
}

// Search returns the products whose name contains text, case-insensitively.
func (s *ProductService) Search(ctx context.Context, text string) ([]ProductDto, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}
	products, err := s.store.SearchProducts(ctx, text)
	if err != nil {
		return nil, err
	}
	return toProductDtos(products), nil
}

// Create adds a product to the catalog.
func (s *ProductService) Create(ctx context.Context, dto ProductInput) (*ProductDto, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}
	p := store.Product{
		ID:        uuid.New(),
		Name:      dto.Name,
		Amount:    dto.Amount,
		Price:     dto.Price,
		Version:   1,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}
	return toProductDto(&p), nil
}

// Update replaces a product's name, amount and price.
// Returns ErrProductNotFound if the product does not exist and ErrConflict
// when a concurrent update won the race.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, dto ProductInput) (*ProductDto, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}
	p, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = dto.Name
	p.Amount = dto.Amount
	p.Price = dto.Price
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	p.Version++
	return toProductDto(p), nil
}

// Delete removes a product from the catalog.
// Returns ErrProductInUse while any pending order references it.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := identityFrom(ctx); err != nil {
		return err
	}
	if _, err := s.store.FindProductByID(ctx, id); err != nil {
		return err
	}
	inUse, err := s.store.ProductInPendingOrder(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return verrors.ErrProductInUse
	}
	return s.store.DeleteProduct(ctx, id)
}

func toProductDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toProductDto(&products[i])
	}
	return dtos
}
