package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tarifflyapp/tariffly-server/internal/store"
)

type vendorRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newVendorEntity(s *store.Store) *store.Entity[vendorRecord] {
	return store.NewEntity[vendorRecord](s, "vendor:")
}

func TestEntity_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	vendors := newVendorEntity(s)

	rec := &vendorRecord{ID: "1", Name: "Basel Textiles", Email: "sales@baseltextiles.example"}
	require.NoError(t, vendors.Create(context.Background(), "1", rec))

	got, err := vendors.Get(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, rec.Name, got.Name)
	require.Equal(t, rec.Email, got.Email)
}

func TestEntity_Create_AlreadyExists(t *testing.T) {
	s := newTestStore(t)
	vendors := newVendorEntity(s)

	rec := &vendorRecord{ID: "1", Name: "Basel Textiles", Email: "sales@baseltextiles.example"}
	require.NoError(t, vendors.Create(context.Background(), "1", rec))

	err := vendors.Create(context.Background(), "1", rec)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_Get_NotFound(t *testing.T) {
	s := newTestStore(t)
	vendors := newVendorEntity(s)

	got, err := vendors.Get(context.Background(), "nonexistent")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Nil(t, got)
}

func TestEntity_Update(t *testing.T) {
	s := newTestStore(t)
	vendors := newVendorEntity(s)

	rec := &vendorRecord{ID: "1", Name: "Basel Textiles", Email: "sales@baseltextiles.example"}
	require.NoError(t, vendors.Create(context.Background(), "1", rec))

	updated := &vendorRecord{ID: "1", Name: "Basel Textiles AG", Email: "hello@baseltextiles.example"}
	require.NoError(t, vendors.Update(context.Background(), "1", updated))

	got, err := vendors.Get(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, "Basel Textiles AG", got.Name)
	require.Equal(t, "hello@baseltextiles.example", got.Email)
}

func TestEntity_Update_NotFound(t *testing.T) {
	s := newTestStore(t)
	vendors := newVendorEntity(s)

	rec := &vendorRecord{ID: "1", Name: "Basel Textiles", Email: "sales@baseltextiles.example"}
	err := vendors.Update(context.Background(), "nonexistent", rec)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Delete(t *testing.T) {
	s := newTestStore(t)
	vendors := newVendorEntity(s)

	rec := &vendorRecord{ID: "1", Name: "Basel Textiles", Email: "sales@baseltextiles.example"}
	require.NoError(t, vendors.Create(context.Background(), "1", rec))
	require.NoError(t, vendors.Delete(context.Background(), "1"))

	_, err := vendors.Get(context.Background(), "1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_Delete_Idempotent(t *testing.T) {
	s := newTestStore(t)
	vendors := newVendorEntity(s)

	require.NoError(t, vendors.Delete(context.Background(), "nonexistent"))
}

func TestEntity_ContextCancellation(t *testing.T) {
	s := newTestStore(t)
	vendors := newVendorEntity(s)

	rec := &vendorRecord{ID: "1", Name: "Basel Textiles", Email: "sales@baseltextiles.example"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, vendors.Create(ctx, "1", rec), context.Canceled)

	_, err := vendors.Get(ctx, "1")
	require.ErrorIs(t, err, context.Canceled)

	require.ErrorIs(t, vendors.Update(ctx, "1", rec), context.Canceled)
	require.ErrorIs(t, vendors.Delete(ctx, "1"), context.Canceled)
}

func TestEntity_ContextTimeout(t *testing.T) {
	s := newTestStore(t)
	vendors := newVendorEntity(s)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(2 * time.Nanosecond)

	rec := &vendorRecord{ID: "1", Name: "Basel Textiles", Email: "sales@baseltextiles.example"}
	require.ErrorIs(t, vendors.Create(ctx, "1", rec), context.DeadlineExceeded)
}

func TestEntity_GetByIndex(t *testing.T) {
	s := newTestStore(t)
	vendors := store.NewEntity[vendorRecord](s, "vendor:").
		WithIndex("email", func(v *vendorRecord) []string {
			return []string{v.Email}
		})

	ctx := context.Background()
	rec := &vendorRecord{ID: "vnd_1", Name: "Basel Textiles", Email: "sales@baseltextiles.example"}
	require.NoError(t, vendors.Create(ctx, "vnd_1", rec))

	got, err := vendors.GetByIndex(ctx, "email", "sales@baseltextiles.example")
	require.NoError(t, err)
	require.Equal(t, "vnd_1", got.ID)

	_, err = vendors.GetByIndex(ctx, "email", "nobody@baseltextiles.example")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_IndexConflict(t *testing.T) {
	s := newTestStore(t)
	vendors := store.NewEntity[vendorRecord](s, "vendor:").
		WithIndex("email", func(v *vendorRecord) []string {
			return []string{v.Email}
		})

	ctx := context.Background()
	first := &vendorRecord{ID: "vnd_1", Name: "First", Email: "shared@example.com"}
	require.NoError(t, vendors.Create(ctx, "vnd_1", first))

	second := &vendorRecord{ID: "vnd_2", Name: "Second", Email: "shared@example.com"}
	err := vendors.Create(ctx, "vnd_2", second)
	require.Error(t, err)
	require.Contains(t, err.Error(), "email")
}

func TestEntity_List(t *testing.T) {
	s := newTestStore(t)
	vendors := newVendorEntity(s)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		rec := &vendorRecord{
			ID:    fmt.Sprintf("vnd_%d", i),
			Name:  fmt.Sprintf("Vendor %d", i),
			Email: fmt.Sprintf("vendor%d@example.com", i),
		}
		require.NoError(t, vendors.Create(ctx, rec.ID, rec))
	}

	var count int
	for rec, err := range vendors.List(ctx) {
		require.NoError(t, err)
		require.NotEmpty(t, rec.ID)
		count++
	}
	require.Equal(t, 5, count)
}

func TestEntity_List_EarlyTermination(t *testing.T) {
	s := newTestStore(t)
	vendors := newVendorEntity(s)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		rec := &vendorRecord{
			ID:    fmt.Sprintf("vnd_%d", i),
			Name:  fmt.Sprintf("Vendor %d", i),
			Email: fmt.Sprintf("vendor%d@example.com", i),
		}
		require.NoError(t, vendors.Create(ctx, rec.ID, rec))
	}

	var count int
	for _, err := range vendors.List(ctx) {
		require.NoError(t, err)
		count++
		if count == 3 {
			break
		}
	}
	require.Equal(t, 3, count)
}

func TestEntity_List_ContextCancellation(t *testing.T) {
	s := newTestStore(t)
	vendors := newVendorEntity(s)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 1; i <= 5; i++ {
		rec := &vendorRecord{
			ID:    fmt.Sprintf("vnd_%d", i),
			Name:  fmt.Sprintf("Vendor %d", i),
			Email: fmt.Sprintf("vendor%d@example.com", i),
		}
		require.NoError(t, vendors.Create(context.Background(), rec.ID, rec))
	}

	var count int
	for rec, err := range vendors.List(ctx) {
		count++
		if count == 2 {
			cancel()
			continue
		}
		if err != nil {
			require.ErrorIs(t, err, context.Canceled)
			break
		}
		require.NotNil(t, rec)
	}
}
