package service

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/productstack/products-backend/internal/products/domain"
	"github.com/productstack/products-backend/internal/products/repository"
)

func setupTestService(t *testing.T) *ProductService {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewProductService(repository.NewProductRepository(client))
}

func ownedProduct(owner string) domain.Product {
	return domain.Product{
		OwnerID:      owner,
		Name:         "test product",
		Description:  "",
		ComponentIDs: []string{"c1", "c2"},
		Price:        0.0,
	}
}

func TestProductService_Create(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("creates when payload owner matches the acting user", func(t *testing.T) {
		created, err := svc.Create(ctx, ownedProduct("user123"), "user123")
		require.NoError(t, err)
		assert.NotEmpty(t, created.Key)
		assert.Equal(t, "user123", created.OwnerID)
	})

	t.Run("mismatched owner is forbidden and writes nothing", func(t *testing.T) {
		_, err := svc.Create(ctx, ownedProduct("someone-else"), "user123")
		assert.ErrorIs(t, err, domain.ErrNotOwner)

		items, err := svc.List(ctx, "someone-else")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestProductService_Get(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ownedProduct("user123"), "user123")
	require.NoError(t, err)

	t.Run("owner reads the product", func(t *testing.T) {
		got, err := svc.Get(ctx, created.Key, "user123")
		require.NoError(t, err)
		assert.Equal(t, *created, *got)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		_, err := svc.Get(ctx, created.Key, "someone-else")
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})

	t.Run("absent key is not found regardless of user", func(t *testing.T) {
		_, err := svc.Get(ctx, "00000000-0000-0000-0000-000000000000", "user123")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)

		_, err = svc.Get(ctx, "00000000-0000-0000-0000-000000000000", "someone-else")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("malformed key is rejected before the store", func(t *testing.T) {
		for _, key := range []string{" ", "has space", "tab\tkey", strings.Repeat("k", 513)} {
			_, err := svc.Get(ctx, key, "user123")
			assert.ErrorIs(t, err, domain.ErrMalformedKey, "key %q", key)
		}
	})
}

func TestProductService_Upsert(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("creates under a fresh caller-supplied key", func(t *testing.T) {
		p := ownedProduct("user123")
		p.Key = "fresh-key"

		stored, err := svc.Upsert(ctx, p, "user123")
		require.NoError(t, err)
		assert.Equal(t, p, *stored)
	})

	t.Run("fully replaces under the same key", func(t *testing.T) {
		p := ownedProduct("user123")
		p.Key = "replace-key"
		_, err := svc.Upsert(ctx, p, "user123")
		require.NoError(t, err)

		p.Name = "replaced"
		p.ComponentIDs = []string{"c9"}
		p.Price = 4.5
		stored, err := svc.Upsert(ctx, p, "user123")
		require.NoError(t, err)
		assert.Equal(t, p, *stored)

		got, err := svc.Get(ctx, "replace-key", "user123")
		require.NoError(t, err)
		assert.Equal(t, p, *got)
	})

	t.Run("cannot overwrite someone else's product", func(t *testing.T) {
		p := ownedProduct("owner-a")
		p.Key = "contested-key"
		_, err := svc.Upsert(ctx, p, "owner-a")
		require.NoError(t, err)

		// Payload owner matches the acting user, but the record does not.
		hijack := ownedProduct("owner-b")
		hijack.Key = "contested-key"
		_, err = svc.Upsert(ctx, hijack, "owner-b")
		assert.ErrorIs(t, err, domain.ErrNotOwner)

		got, err := svc.Get(ctx, "contested-key", "owner-a")
		require.NoError(t, err)
		assert.Equal(t, "owner-a", got.OwnerID)
		assert.Equal(t, "test product", got.Name)
	})

	t.Run("cannot create a product owned by someone else", func(t *testing.T) {
		p := ownedProduct("someone-else")
		p.Key = "foreign-owner-key"
		_, err := svc.Upsert(ctx, p, "user123")
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})

	t.Run("malformed key is rejected", func(t *testing.T) {
		p := ownedProduct("user123")
		p.Key = "bad key"
		_, err := svc.Upsert(ctx, p, "user123")
		assert.ErrorIs(t, err, domain.ErrMalformedKey)
	})
}

func TestProductService_Update(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ownedProduct("user123"), "user123")
	require.NoError(t, err)

	t.Run("applies partial fields, retains the rest", func(t *testing.T) {
		desc := "updated description"
		err := svc.Update(ctx, created.Key, domain.ProductPatch{Description: &desc}, "user123")
		require.NoError(t, err)

		got, err := svc.Get(ctx, created.Key, "user123")
		require.NoError(t, err)
		assert.Equal(t, "updated description", got.Description)
		assert.Equal(t, created.Name, got.Name)
		assert.Equal(t, created.ComponentIDs, got.ComponentIDs)
		assert.Equal(t, created.Price, got.Price)
	})

	t.Run("absent key is not found regardless of user", func(t *testing.T) {
		name := "x"
		err := svc.Update(ctx, "00000000-0000-0000-0000-000000000000", domain.ProductPatch{Name: &name}, "anyone")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("non-owner is forbidden and the record is unchanged", func(t *testing.T) {
		name := "intruded"
		err := svc.Update(ctx, created.Key, domain.ProductPatch{Name: &name}, "someone-else")
		assert.ErrorIs(t, err, domain.ErrNotOwner)

		got, err := svc.Get(ctx, created.Key, "user123")
		require.NoError(t, err)
		assert.Equal(t, created.Name, got.Name)
	})
}

func TestProductService_Delete(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	t.Run("owner deletes, subsequent get is not found", func(t *testing.T) {
		created, err := svc.Create(ctx, ownedProduct("user123"), "user123")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, created.Key, "user123"))

		_, err = svc.Get(ctx, created.Key, "user123")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("non-owner is forbidden and the record survives", func(t *testing.T) {
		created, err := svc.Create(ctx, ownedProduct("user123"), "user123")
		require.NoError(t, err)

		err = svc.Delete(ctx, created.Key, "someone-else")
		assert.ErrorIs(t, err, domain.ErrNotOwner)

		_, err = svc.Get(ctx, created.Key, "user123")
		assert.NoError(t, err)
	})

	t.Run("absent key is not found", func(t *testing.T) {
		err := svc.Delete(ctx, "00000000-0000-0000-0000-000000000000", "user123")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestProductService_List(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	mine, err := svc.Create(ctx, ownedProduct("owner-a"), "owner-a")
	require.NoError(t, err)
	_, err = svc.Create(ctx, ownedProduct("owner-b"), "owner-b")
	require.NoError(t, err)

	t.Run("owner's list contains their product", func(t *testing.T) {
		items, err := svc.List(ctx, "owner-a")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, mine.Key, items[0].Key)
	})

	t.Run("another user's list never contains it", func(t *testing.T) {
		items, err := svc.List(ctx, "owner-b")
		require.NoError(t, err)
		for _, item := range items {
			assert.NotEqual(t, mine.Key, item.Key)
		}
	})
}
