package testutil

import (
	"context"
	"testing"
	"time"
)

// ContextWithTimeout returns a context bounded by d and cancelled on test cleanup.
func ContextWithTimeout(tb testing.TB, d time.Duration) context.Context {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	tb.Cleanup(cancel)
	return ctx
}
