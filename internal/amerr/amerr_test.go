package amerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := New(NotFound, "unknown source name")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is to match ErrNotFound sentinel")
	}
	if errors.Is(err, ErrLoadFailed) {
		t.Fatalf("expected errors.Is to not match a different kind")
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := fmt.Errorf("disk gone")
	err := Wrap(LoadFailed, "decode header", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to reach the wrapped cause")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty Error() message")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Unknown:           "unknown",
		InvalidParameter:  "invalid_parameter",
		NotFound:          "not_found",
		LoadFailed:        "load_failed",
		OutOfMemory:       "out_of_memory",
		NotImplemented:    "not_implemented",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
