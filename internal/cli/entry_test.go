package cli

import (
	"context"
	"testing"

	"github.com/example/todoledger/internal/ctxutil"
)

func TestResolveOwner(t *testing.T) {
	t.Setenv(ctxutil.ActorEnvVar, "")

	if _, err := resolveOwner(""); err == nil {
		t.Error("expected error when neither flag nor env is set")
	}

	got, err := resolveOwner("alice")
	if err != nil || got != "alice" {
		t.Errorf("expected alice, got %q (%v)", got, err)
	}

	t.Setenv(ctxutil.ActorEnvVar, "bob")
	got, err = resolveOwner("")
	if err != nil || got != "bob" {
		t.Errorf("expected env owner bob, got %q (%v)", got, err)
	}

	got, _ = resolveOwner("alice")
	if got != "alice" {
		t.Errorf("expected flag to win over env, got %q", got)
	}
}

func TestOwnerContext_SetsActor(t *testing.T) {
	ctx, owner, err := ownerContext(context.Background(), "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner != "carol" {
		t.Errorf("expected carol, got %q", owner)
	}
	if got := ctxutil.ActorFromContext(ctx); got != "carol" {
		t.Errorf("expected actor carol in context, got %q", got)
	}
}

func TestParseEntryID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"1", 1, false},
		{"18446744073709551615", 18446744073709551615, false},
		{"0", 0, false},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseEntryID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseEntryID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseEntryID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
