package usecase

import (
	"testing"
	"time"

	"github.com/DRSN-tech/grocery-cart/internal/domain"
)

func TestIdentityHolder_SetGetClear(t *testing.T) {
	holder := NewIdentityHolder(nil)

	if _, ok := holder.Get(); ok {
		t.Fatal("new holder must be empty")
	}

	holder.Set(domain.Session{Token: "t1", Identity: domain.Identity{ID: "u1"}})
	session, ok := holder.Get()
	if !ok || session.Token != "t1" || session.Identity.ID != "u1" {
		t.Fatalf("unexpected session %+v ok=%v", session, ok)
	}

	holder.Clear()
	if _, ok := holder.Get(); ok {
		t.Fatal("holder must be empty after Clear")
	}
}

func TestIdentityHolder_ExpiredTokenIsAbsent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	holder := NewIdentityHolder(func() time.Time { return now })

	expires := now.Add(time.Minute)
	holder.Set(domain.Session{Token: "t1", ExpiresAt: &expires})
	if _, ok := holder.Get(); !ok {
		t.Fatal("token valid for another minute")
	}

	now = now.Add(time.Minute)
	if _, ok := holder.Get(); ok {
		t.Fatal("expired token must not be returned")
	}
}
