package logger

import (
	"context"
	"testing"
)

func TestContextHelpersStampIdentityFields(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	ctx = WithUserID(ctx, 7)
	ctx = WithVendorID(ctx, 11)

	if got := ctx.Value(RequestIDKey); got != "req-42" {
		t.Fatalf("request id = %v", got)
	}
	if got := ctx.Value(UserIDKey); got != int64(7) {
		t.Fatalf("user id = %v", got)
	}
	if got := ctx.Value(VendorIDKey); got != int64(11) {
		t.Fatalf("vendor id = %v", got)
	}
}

func TestWithContextIgnoresBareContext(t *testing.T) {
	if got := WithContext(context.Background()); got != defaultLogger {
		t.Fatal("bare context should not allocate a derived logger")
	}
}
