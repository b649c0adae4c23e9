package pkglog

import (
	"context"
	"testing"
)

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	if got := GetCorrelationID(ctx); got != "[invalid_chain_id]" {
		t.Fatalf("expected invalid chain id, got %q", got)
	}

	if _, ok := LookupCorrelationID(ctx); ok {
		t.Fatalf("expected no correlation id")
	}

	ctx = SetCorrelationID(ctx, "cid-123")
	if got := GetCorrelationID(ctx); got != "cid-123" {
		t.Fatalf("expected cid-123, got %q", got)
	}
	if got, ok := LookupCorrelationID(ctx); !ok || got != "cid-123" {
		t.Fatalf("LookupCorrelationID() = %q, %v, want cid-123, true", got, ok)
	}
}

func TestUserID(t *testing.T) {
	ctx := context.Background()
	if got := GetUserID(ctx); got != "" {
		t.Fatalf("expected empty user id, got %q", got)
	}

	ctx = SetUserID(ctx, "user-1")
	if got := GetUserID(ctx); got != "user-1" {
		t.Fatalf("expected user-1, got %q", got)
	}
}
