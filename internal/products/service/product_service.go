package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/productstack/products-backend/internal/products/domain"
	"github.com/productstack/products-backend/internal/products/repository"
)

// maxKeyLen bounds product identifiers; anything longer is malformed.
const maxKeyLen = 512

// ProductService enforces the ownership rules around the product store.
// Every operation issues at most one store round-trip (the conditional
// writes bundle their lookup and write into a single transaction).
type ProductService struct {
	repo *repository.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo *repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// List returns all products owned by the acting user. The owner filter is
// the authorization boundary; no further check is needed.
func (s *ProductService) List(ctx context.Context, userID string) ([]domain.Product, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// Get returns a single product. Existence is checked before ownership, so
// a missing record is ErrProductNotFound even for a non-owner.
func (s *ProductService) Get(ctx context.Context, key, userID string) (*domain.Product, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	p, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID {
		return nil, domain.ErrNotOwner
	}
	return p, nil
}

// Create stores a new product under a server-generated key. The payload's
// owner must be the acting user; no write happens otherwise.
func (s *ProductService) Create(ctx context.Context, p domain.Product, userID string) (*domain.Product, error) {
	if p.OwnerID != userID {
		return nil, domain.ErrNotOwner
	}

	p.Key = ""
	if err := s.repo.Insert(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert writes a product under its caller-supplied key, creating or fully
// replacing it. Overwriting a record owned by someone else is forbidden,
// as is creating a record owned by someone else.
func (s *ProductService) Upsert(ctx context.Context, p domain.Product, userID string) (*domain.Product, error) {
	if err := validateKey(p.Key); err != nil {
		return nil, err
	}

	err := s.repo.Put(ctx, &p, func(existing *domain.Product) error {
		if existing != nil && existing.OwnerID != userID {
			return domain.ErrNotOwner
		}
		if p.OwnerID != userID {
			return domain.ErrNotOwner
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies a partial update to an existing product owned by the
// acting user. Fields absent from the patch are left unchanged.
func (s *ProductService) Update(ctx context.Context, key string, patch domain.ProductPatch, userID string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	return s.repo.Merge(ctx, key, patch, func(existing *domain.Product) error {
		if existing.OwnerID != userID {
			return domain.ErrNotOwner
		}
		return nil
	})
}

// Delete removes a product owned by the acting user.
func (s *ProductService) Delete(ctx context.Context, key, userID string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	return s.repo.Delete(ctx, key, func(existing *domain.Product) error {
		if existing.OwnerID != userID {
			return domain.ErrNotOwner
		}
		return nil
	})
}

// validateKey rejects identifiers the store would otherwise accept
// silently: empty, oversized, or containing whitespace/control characters.
func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || len(key) > maxKeyLen {
		return domain.ErrMalformedKey
	}
	for _, r := range key {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return domain.ErrMalformedKey
		}
	}
	return nil
}
