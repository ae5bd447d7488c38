package kvstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meridianfi/arbengine/internal/kvstore"
)

func TestInMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewInMemory()

	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("expected 'v', got %q", got)
	}
}

func TestInMemory_GetMissingKey(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewInMemory()

	_, err := store.Get(ctx, "missing")
	if !errors.Is(err, kvstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewInMemory()

	if err := store.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, err := store.Get(ctx, "k")
	if !errors.Is(err, kvstore.ErrNotFound) {
		t.Errorf("expected expired key to read as ErrNotFound, got %v", err)
	}
}

func TestInMemory_Exists(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewInMemory()

	ok, err := store.Exists(ctx, "k")
	if err != nil || ok {
		t.Fatalf("expected false/nil for missing key, got %v/%v", ok, err)
	}

	_ = store.Set(ctx, "k", []byte("v"), 0)

	ok, err = store.Exists(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected true/nil for present key, got %v/%v", ok, err)
	}
}
