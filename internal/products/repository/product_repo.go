package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/productstack/products-backend/internal/products/domain"
)

const (
	itemKeyPrefix    = "products:item:"  // Record data: products:item:{key}
	ownerIndexPrefix = "products:owner:" // Set of product keys per owner: products:owner:{owner_id}
)

// ProductRepository handles Redis operations for product records.
//
// Records are stored as JSON blobs under a per-product key, with a SET per
// owner indexing that owner's product keys. Mutations that depend on a
// prior read (replace, merge, delete) run under WATCH so a concurrent
// write to the same key aborts the transaction instead of racing it.
type ProductRepository struct {
	client *redis.Client
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(client *redis.Client) *ProductRepository {
	return &ProductRepository{client: client}
}

// Insert stores a new product under a freshly generated key. It fails with
// ErrProductExists if the generated key is already taken.
func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	if p.Key == "" {
		id, err := uuid.NewUUID() // time-based v1, matching existing record ids
		if err != nil {
			return fmt.Errorf("generate product key: %w", err)
		}
		p.Key = id.String()
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.itemKey(p.Key), data, 0).Result()
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	if !ok {
		return domain.ErrProductExists
	}

	if err := r.client.SAdd(ctx, r.ownerIndexKey(p.OwnerID), p.Key).Err(); err != nil {
		return fmt.Errorf("index product for owner: %w", err)
	}
	return nil
}

// Get retrieves a product by key.
func (r *ProductRepository) Get(ctx context.Context, key string) (*domain.Product, error) {
	data, err := r.client.Get(ctx, r.itemKey(key)).Result()
	if err == redis.Nil {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	var p domain.Product
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err)
	}
	return &p, nil
}

// Put writes a product under its caller-supplied key with insert-or-replace
// semantics. The write runs under WATCH; check takes the existing record
// (nil when absent) and decides whether the write may proceed.
func (r *ProductRepository) Put(ctx context.Context, p *domain.Product, check func(existing *domain.Product) error) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	itemKey := r.itemKey(p.Key)
	txn := func(tx *redis.Tx) error {
		var existing *domain.Product
		raw, err := tx.Get(ctx, itemKey).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("get product: %w", err)
		}
		if err == nil {
			existing = &domain.Product{}
			if err := json.Unmarshal([]byte(raw), existing); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err)
			}
		}

		if check != nil {
			if err := check(existing); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, itemKey, data, 0)
			if existing != nil && existing.OwnerID != p.OwnerID {
				pipe.SRem(ctx, r.ownerIndexKey(existing.OwnerID), p.Key)
			}
			pipe.SAdd(ctx, r.ownerIndexKey(p.OwnerID), p.Key)
			return nil
		})
		return err
	}

	if err := r.client.Watch(ctx, txn, itemKey); err != nil {
		if err == redis.TxFailedErr {
			return fmt.Errorf("put product: %w", domain.ErrWriteConflict)
		}
		return err
	}
	return nil
}

// Merge applies a partial update to an existing product under WATCH.
// check sees the current record before the patch is applied.
func (r *ProductRepository) Merge(ctx context.Context, key string, patch domain.ProductPatch, check func(existing *domain.Product) error) error {
	itemKey := r.itemKey(key)
	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, itemKey).Result()
		if err == redis.Nil {
			return domain.ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}

		var existing domain.Product
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err)
		}

		if check != nil {
			if err := check(&existing); err != nil {
				return err
			}
		}

		patch.Apply(&existing)
		data, err := json.Marshal(&existing)
		if err != nil {
			return fmt.Errorf("marshal product: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, itemKey, data, 0)
			return nil
		})
		return err
	}

	if err := r.client.Watch(ctx, txn, itemKey); err != nil {
		if err == redis.TxFailedErr {
			return fmt.Errorf("update product: %w", domain.ErrWriteConflict)
		}
		return err
	}
	return nil
}

// Delete removes a product and its owner-index entry under WATCH.
func (r *ProductRepository) Delete(ctx context.Context, key string, check func(existing *domain.Product) error) error {
	itemKey := r.itemKey(key)
	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, itemKey).Result()
		if err == redis.Nil {
			return domain.ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}

		var existing domain.Product
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err)
		}

		if check != nil {
			if err := check(&existing); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, itemKey)
			pipe.SRem(ctx, r.ownerIndexKey(existing.OwnerID), key)
			return nil
		})
		return err
	}

	if err := r.client.Watch(ctx, txn, itemKey); err != nil {
		if err == redis.TxFailedErr {
			return fmt.Errorf("delete product: %w", domain.ErrWriteConflict)
		}
		return err
	}
	return nil
}

// ListByOwner retrieves all products whose owner_id equals ownerID.
// Order follows the owner set and is not guaranteed stable.
func (r *ProductRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Product, error) {
	keys, err := r.client.SMembers(ctx, r.ownerIndexKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list products for owner: %w", err)
	}

	items := make([]domain.Product, 0, len(keys))
	if len(keys) == 0 {
		return items, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, r.itemKey(key))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("fetch products for owner: %w", err)
	}

	for _, cmd := range cmds {
		raw, err := cmd.Result()
		if err == redis.Nil {
			// Stale index entry; the record is gone.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetch product: %w", err)
		}
		var p domain.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err)
		}
		items = append(items, p)
	}
	return items, nil
}

func (r *ProductRepository) itemKey(key string) string {
	return fmt.Sprintf("%s%s", itemKeyPrefix, key)
}

func (r *ProductRepository) ownerIndexKey(ownerID string) string {
	return fmt.Sprintf("%s%s", ownerIndexPrefix, ownerID)
}
