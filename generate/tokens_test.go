package generate

import "testing"

func TestTokenCounter(t *testing.T) {
	tc := NewTokenCounter()

	n, err := tc.Count("hello world")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count(hello world) = %d, want 2", n)
	}

	p, err := BuildPayload([]byte(headerDocument), DefaultModel, DefaultMaxTokens)
	if err != nil {
		t.Fatal(err)
	}
	total, err := tc.CountPayload(p)
	if err != nil {
		t.Fatalf("CountPayload: %v", err)
	}
	if total <= n {
		t.Errorf("CountPayload = %d, want more than a two-word string", total)
	}
}
