package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyHTTPError(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status int
		want   ErrorCategory
	}{
		{400, Irrecoverable},
		{401, Irrecoverable},
		{403, Irrecoverable},
		{404, Irrecoverable},
		{408, Recoverable},
		{429, Recoverable},
		{500, Recoverable},
		{502, Recoverable},
		{503, Recoverable},
		{302, Recoverable}, // unexpected codes retry conservatively
	}
	for _, tc := range cases {
		tc := tc
		t.Run(fmt.Sprintf("status_%d", tc.status), func(t *testing.T) {
			t.Parallel()
			got := ClassifyHTTPError(tc.status, "", nil)
			if got.Category != tc.want {
				t.Fatalf("status %d: got %v, want %v", tc.status, got.Category, tc.want)
			}
		})
	}
}

func TestIsIrrecoverable_WalksChain(t *testing.T) {
	t.Parallel()
	base := NewHTTPError(403, "forbidden", "send message")
	wrapped := fmt.Errorf("persist: %w", base)
	if !IsIrrecoverable(wrapped) {
		t.Fatal("wrapped 403 should still be irrecoverable")
	}
	if IsIrrecoverable(errors.New("plain")) {
		t.Fatal("unclassified errors default to recoverable")
	}
	if IsIrrecoverable(NewNetworkError("dial", errors.New("refused"))) {
		t.Fatal("network errors are recoverable")
	}
}

func TestClassifiedError_Unwrap(t *testing.T) {
	t.Parallel()
	inner := errors.New("boom")
	ce := NewNetworkError("list conversations", inner)
	if !errors.Is(ce, inner) {
		t.Fatal("ClassifiedError should unwrap to the underlying error")
	}
}

func TestClassifiedError_Error(t *testing.T) {
	t.Parallel()
	ce := NewHTTPError(500, "oops", "fetch history")
	msg := ce.Error()
	if msg == "" || ce.StatusCode != 500 {
		t.Fatalf("unexpected error: %q (%d)", msg, ce.StatusCode)
	}
}
