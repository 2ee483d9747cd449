package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func memRow(id, hash string, exp time.Time) Row {
	return Row{
		ID:        id,
		TokenHash: hash,
		Username:  "admin",
		CreatedAt: exp.Add(-5 * time.Minute),
		ExpiresAt: exp,
	}
}

func TestMemoryStore_CreateGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Now().UTC()

	if err := st.Create(ctx, memRow("id1", "hash1", now.Add(time.Minute))); err != nil {
		t.Fatalf("Create: %v", err)
	}

	row, err := st.GetByTokenHash(ctx, "hash1")
	if err != nil {
		t.Fatalf("GetByTokenHash: %v", err)
	}
	if row.ID != "id1" || row.Username != "admin" {
		t.Fatalf("unexpected row: %+v", row)
	}

	if _, err := st.GetByTokenHash(ctx, "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := st.Delete(ctx, "id1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.GetByTokenHash(ctx, "hash1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing row is fine.
	if err := st.Delete(ctx, "id1"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Now().UTC()

	_ = st.Create(ctx, memRow("live", "h-live", now.Add(time.Minute)))
	_ = st.Create(ctx, memRow("dead", "h-dead", now.Add(-time.Second)))
	_ = st.Create(ctx, memRow("edge", "h-edge", now)) // expiry == now counts as expired

	n, err := st.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 2 {
		t.Fatalf("purged %d rows, want 2", n)
	}
	if st.Len() != 1 {
		t.Fatalf("Len()=%d want 1", st.Len())
	}
}

func TestMemoryStore_Count(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Now().UTC()

	_ = st.Create(ctx, memRow("live1", "h1", now.Add(time.Minute)))
	_ = st.Create(ctx, memRow("live2", "h2", now.Add(time.Hour)))
	_ = st.Create(ctx, memRow("dead", "h3", now.Add(-time.Second)))

	n, err := st.Count(ctx, now)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("Count=%d want 2, expired rows must not count", n)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hash := HashTokenHex(string(rune('a' + i)))
			_ = st.Create(ctx, memRow("id", hash, now.Add(time.Minute)))
			_, _ = st.GetByTokenHash(ctx, hash)
			_, _ = st.DeleteExpired(ctx, now)
		}(i)
	}
	wg.Wait()
}
