package council

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFanOut(t *testing.T) {
	t.Run("results land at their own index", func(t *testing.T) {
		got := fanOut(context.Background(), 5, func(_ context.Context, i int) (string, error) {
			return fmt.Sprintf("result-%d", i), nil
		})

		if len(got) != 5 {
			t.Fatalf("got %d outcomes, want 5", len(got))
		}
		for i, out := range got {
			if out.err != nil {
				t.Errorf("outcome %d: unexpected error %v", i, out.err)
			}
			if want := fmt.Sprintf("result-%d", i); out.value != want {
				t.Errorf("outcome %d = %q, want %q", i, out.value, want)
			}
		}
	})

	t.Run("one failure does not abort the rest", func(t *testing.T) {
		boom := errors.New("boom")
		got := fanOut(context.Background(), 3, func(_ context.Context, i int) (string, error) {
			if i == 1 {
				return "", boom
			}
			return "ok", nil
		})

		if got[0].err != nil || got[2].err != nil {
			t.Errorf("siblings affected by failure: %v, %v", got[0].err, got[2].err)
		}
		if !errors.Is(got[1].err, boom) {
			t.Errorf("outcome 1 error = %v, want boom", got[1].err)
		}
		if got[0].value != "ok" || got[2].value != "ok" {
			t.Errorf("sibling values = %q, %q, want ok", got[0].value, got[2].value)
		}
	})

	t.Run("panic is recovered as an error", func(t *testing.T) {
		got := fanOut(context.Background(), 2, func(_ context.Context, i int) (string, error) {
			if i == 0 {
				panic("kaboom")
			}
			return "ok", nil
		})

		if got[0].err == nil || !strings.Contains(got[0].err.Error(), "kaboom") {
			t.Errorf("outcome 0 error = %v, want recovered panic", got[0].err)
		}
		if got[1].err != nil || got[1].value != "ok" {
			t.Errorf("outcome 1 = %q, %v, want ok", got[1].value, got[1].err)
		}
	})

	t.Run("cancelled context reaches every task", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got := fanOut(ctx, 3, func(ctx context.Context, i int) (string, error) {
			return "", ctx.Err()
		})
		for i, out := range got {
			if !errors.Is(out.err, context.Canceled) {
				t.Errorf("outcome %d error = %v, want context.Canceled", i, out.err)
			}
		}
	})

	t.Run("zero tasks", func(t *testing.T) {
		got := fanOut(context.Background(), 0, func(_ context.Context, i int) (string, error) {
			t.Fatal("task should not run")
			return "", nil
		})
		if len(got) != 0 {
			t.Errorf("got %d outcomes, want 0", len(got))
		}
	})
}
