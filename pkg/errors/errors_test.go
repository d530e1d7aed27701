package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeOutOfStock, http.StatusConflict},
		{CodeStockLimit, http.StatusConflict},
		{CodeEmptyCart, http.StatusUnprocessableEntity},
		{CodeDiscountPending, http.StatusUnprocessableEntity},
		{CodeApprovalRequest, http.StatusBadGateway},
		{CodePersistence, http.StatusBadGateway},
	}

	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("code %s: expected status %d, got %d", tc.code, tc.status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("boom")
	err := Wrap(CodePersistence, cause, "save invoice")

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to survive wrapping")
	}
	if err.Code() != CodePersistence {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsFindsTypedErrorThroughChain(t *testing.T) {
	t.Parallel()

	inner := New(CodeDiscountPending, "approval outstanding")
	wrapped := fmt.Errorf("finalize: %w", inner)

	typed := As(wrapped)
	if typed == nil || typed.Code() != CodeDiscountPending {
		t.Fatalf("expected typed error, got %v", typed)
	}
	if !HasCode(wrapped, CodeDiscountPending) {
		t.Fatal("HasCode should match through wrapping")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeDependency, fmt.Errorf("dial tcp"), "redis unavailable")
	dump := Dump(err)

	if dump.Code != CodeDependency {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected chain entries, got %v", dump.Chain)
	}
}
