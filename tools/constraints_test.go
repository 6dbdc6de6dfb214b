package tools

import (
	"context"
	"errors"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// countingTool returns a tool whose body counts its invocations
func countingTool(name string, constraints ...Constraint) (*Tool, *int) {
	calls := 0
	tool := NewTool(mcptypes.NewTool(name), func(ctx context.Context, args map[string]any) (any, error) {
		calls++
		return "ok", nil
	}, constraints...)
	return tool, &calls
}

func TestCallLimitSucceedsExactlyOnce(t *testing.T) {
	limit := NewCallLimit(1)
	tool, calls := countingTool("limited", limit)
	ctx := context.Background()

	attempts := []map[string]any{
		{"n": float64(1)},
		{"n": float64(2)},
		{},
		{"n": float64(1)},
		nil,
	}

	succeeded := 0
	for i, args := range attempts {
		_, err := tool.Call(ctx, args)
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, ErrCallLimitExceeded) {
			t.Errorf("attempt %d: got %v, want ErrCallLimitExceeded", i, err)
		}
	}

	if succeeded != 1 {
		t.Errorf("succeeded %d times, want 1", succeeded)
	}
	if *calls != 1 {
		t.Errorf("body ran %d times, want 1", *calls)
	}
	if limit.Remaining() != 0 {
		t.Errorf("remaining: got %d, want 0", limit.Remaining())
	}
}

func TestCallLimitZero(t *testing.T) {
	tool, calls := countingTool("disabled", NewCallLimit(0))

	if _, err := tool.Call(context.Background(), nil); !errors.Is(err, ErrCallLimitExceeded) {
		t.Errorf("got %v, want ErrCallLimitExceeded", err)
	}
	if *calls != 0 {
		t.Errorf("body ran %d times, want 0", *calls)
	}
}

func TestUniqueArgs(t *testing.T) {
	tests := []struct {
		name    string
		calls   []map[string]any
		wantErr []bool
	}{
		{
			name:    "identical arguments rejected the second time",
			calls:   []map[string]any{{"food": "rice"}, {"food": "rice"}},
			wantErr: []bool{false, true},
		},
		{
			name:    "different arguments always accepted",
			calls:   []map[string]any{{"food": "rice"}, {"food": "beans"}, {"food": "lentils"}},
			wantErr: []bool{false, false, false},
		},
		{
			name: "key order does not matter",
			calls: []map[string]any{
				{"food": "rice", "grams": float64(100)},
				{"grams": float64(100), "food": "rice"},
			},
			wantErr: []bool{false, true},
		},
		{
			name:    "no arguments counts as one tuple",
			calls:   []map[string]any{nil, {}},
			wantErr: []bool{false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool, calls := countingTool("unique", NewUniqueArgs())
			want := 0

			for i, args := range tt.calls {
				_, err := tool.Call(context.Background(), args)
				if tt.wantErr[i] {
					if !errors.Is(err, ErrDuplicateCall) {
						t.Errorf("call %d: got %v, want ErrDuplicateCall", i, err)
					}
					continue
				}
				if err != nil {
					t.Errorf("call %d: unexpected error %v", i, err)
				}
				want++
			}

			if *calls != want {
				t.Errorf("body ran %d times, want %d", *calls, want)
			}
		})
	}
}

func TestRejectionDoesNotMutateOtherConstraints(t *testing.T) {
	limit := NewCallLimit(2)
	unique := NewUniqueArgs()
	tool, calls := countingTool("both", unique, limit)
	ctx := context.Background()

	if _, err := tool.Call(ctx, map[string]any{"food": "rice"}); err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	// Duplicate is rejected by UniqueArgs and must not spend the limit
	if _, err := tool.Call(ctx, map[string]any{"food": "rice"}); !errors.Is(err, ErrDuplicateCall) {
		t.Fatalf("got %v, want ErrDuplicateCall", err)
	}
	if limit.Remaining() != 1 {
		t.Errorf("remaining after rejection: got %d, want 1", limit.Remaining())
	}

	if _, err := tool.Call(ctx, map[string]any{"food": "beans"}); err != nil {
		t.Fatalf("third call failed: %v", err)
	}

	// Limit is now spent; new arguments must not be remembered by UniqueArgs
	if _, err := tool.Call(ctx, map[string]any{"food": "lentils"}); !errors.Is(err, ErrCallLimitExceeded) {
		t.Fatalf("got %v, want ErrCallLimitExceeded", err)
	}
	if err := unique.Check(map[string]any{"food": "lentils"}); err != nil {
		t.Errorf("rejected call was recorded as seen: %v", err)
	}

	if *calls != 2 {
		t.Errorf("body ran %d times, want 2", *calls)
	}
}

func TestThrottle(t *testing.T) {
	throttle := NewThrottle(1)
	first, firstCalls := countingTool("first", throttle)
	second, secondCalls := countingTool("second", throttle)
	ctx := context.Background()

	if _, err := first.Call(ctx, nil); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := second.Call(ctx, nil); !errors.Is(err, ErrRateLimited) {
		t.Errorf("got %v, want ErrRateLimited", err)
	}
	if *firstCalls != 1 || *secondCalls != 0 {
		t.Errorf("body calls: first=%d second=%d", *firstCalls, *secondCalls)
	}
}

func TestIsConstraint(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrCallLimitExceeded, true},
		{ErrDuplicateCall, true},
		{ErrRateLimited, true},
		{ErrNotImplemented, false},
		{errors.New("boom"), false},
	}

	for _, tt := range tests {
		if got := IsConstraint(tt.err); got != tt.want {
			t.Errorf("IsConstraint(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
