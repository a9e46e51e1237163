package api

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKindSeesThroughWrapping(t *testing.T) {
	base := statusError(401, "token expired")

	if !IsKind(base, KindAuth) {
		t.Fatal("unwrapped error should match its kind")
	}

	wrapped := fmt.Errorf("persist token: %w", base)
	if !IsKind(wrapped, KindAuth) {
		t.Fatal("wrapped error should still match its kind")
	}
	if IsKind(wrapped, KindNetwork) {
		t.Fatal("wrapped error must not match a different kind")
	}

	if IsKind(errors.New("plain"), KindAuth) {
		t.Fatal("non-api error must not match")
	}
	if IsKind(nil, KindAuth) {
		t.Fatal("nil must not match")
	}
}
