package memory

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/ports"
)

func storedFixture() ports.StoredSession {
	return ports.StoredSession{
		Credential: "credential-long-enough",
		User: &domain.User{
			ID:         "u-1",
			UIUID:      "01112345",
			Name:       "Test Student",
			Email:      "test@uiu.ac.bd",
			Role:       domain.RoleStudent,
			IsActive:   true,
			IsVerified: true,
		},
		LastLoginAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	want := storedFixture()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Credential != want.Credential {
		t.Fatalf("credential mismatch: %q", got.Credential)
	}
	if !reflect.DeepEqual(got.User, want.User) {
		t.Fatalf("user mismatch:\n got %+v\nwant %+v", got.User, want.User)
	}
	if !got.LastLoginAt.Equal(want.LastLoginAt) {
		t.Fatalf("last login mismatch: %s", got.LastLoginAt)
	}
}

func TestMemoryStore_EmptyLoad(t *testing.T) {
	store := NewSessionStore()
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty, got %+v", got)
	}
}

func TestMemoryStore_PartialWriteHealsToEmpty(t *testing.T) {
	store := NewSessionStore()
	store.Put(keyUser, `{"id":"u-1","name":"X","email":"x@y","role":"student"}`)

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected self-healed empty session, got %+v", got)
	}

	// The corrupt key must be gone afterwards.
	again, _ := store.Load(context.Background())
	if !again.Empty() {
		t.Fatalf("corruption survived healing")
	}
}

func TestMemoryStore_CorruptUserHealsToEmpty(t *testing.T) {
	store := NewSessionStore()
	store.Put(keyCredential, "credential-long-enough")
	store.Put(keyUser, "{not json")

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected self-healed empty session, got %+v", got)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	if err := store.Save(ctx, storedFixture()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty after clear, got %+v", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
