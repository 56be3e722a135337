package policy_test

import (
	"strings"
	"testing"

	"github.com/jdelaire/climabot/core/policy"
)

func TestAuthorizeAllowedChat(t *testing.T) {
	p := policy.New([]int64{100, 200})
	if err := p.Authorize(100, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthorizeDeniedChat(t *testing.T) {
	p := policy.New([]int64{100})
	err := p.Authorize(999, 1)
	if err == nil {
		t.Fatal("expected error for unauthorized chat")
	}
	if !strings.Contains(err.Error(), "unauthorized chat") {
		t.Errorf("error = %q, want 'unauthorized chat'", err)
	}
}

func TestAuthorizeEmptyAllowlistAdmitsAll(t *testing.T) {
	p := policy.New(nil)
	for i, chat := range []int64{1, -100200300, 42} {
		if err := p.Authorize(chat, int64(i)); err != nil {
			t.Errorf("Authorize(%d) = %v, want nil", chat, err)
		}
	}
}

func TestAuthorizeDuplicateUpdateID(t *testing.T) {
	p := policy.New([]int64{100})

	if err := p.Authorize(100, 42); err != nil {
		t.Fatalf("first: %v", err)
	}

	err := p.Authorize(100, 42)
	if err == nil {
		t.Fatal("expected error for duplicate update_id")
	}
	if !strings.Contains(err.Error(), "duplicate update") {
		t.Errorf("error = %q, want 'duplicate update'", err)
	}
}

func TestAuthorizePruning(t *testing.T) {
	p := policy.New(nil)

	// Fill up to capacity.
	for i := int64(0); i < 10000; i++ {
		if err := p.Authorize(100, i); err != nil {
			t.Fatalf("authorize %d: %v", i, err)
		}
	}

	// Next authorize should trigger pruning and succeed.
	if err := p.Authorize(100, 10000); err != nil {
		t.Fatalf("post-prune authorize: %v", err)
	}

	// Early IDs should be pruned and reusable.
	if err := p.Authorize(100, 0); err != nil {
		t.Fatalf("reuse pruned ID: %v", err)
	}
}
