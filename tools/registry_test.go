package tools

import (
	"strings"
	"testing"
)

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()
	notes, _ := countingTool("get_meal_notes")
	dup, _ := countingTool("get_meal_notes")
	unnamed, _ := countingTool("")

	if err := reg.Register(notes); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Register(dup); err == nil {
		t.Error("expected error for duplicate name")
	}
	if err := reg.Register(unnamed); err == nil {
		t.Error("expected error for empty name")
	}

	if reg.Len() != 1 {
		t.Errorf("Len: got %d, want 1", reg.Len())
	}
	if tool, ok := reg.Lookup("get_meal_notes"); !ok || tool != notes {
		t.Error("Lookup did not return the registered tool")
	}
	if _, ok := reg.Lookup("get_weather"); ok {
		t.Error("Lookup found an unregistered tool")
	}
}

func TestRegistryFallback(t *testing.T) {
	empty := NewRegistry()
	if got := empty.Fallback("anything"); got != `unknown tool "anything"` {
		t.Errorf("empty registry fallback: %q", got)
	}

	notes, _ := countingTool("get_meal_notes")
	recent, _ := countingTool("get_recent_requests")
	reg := NewRegistry()
	_ = reg.Register(notes)
	_ = reg.Register(recent)

	tests := []struct {
		name     string
		request  string
		contains string
	}{
		{"close match", "get_notes", `did you mean "get_meal_notes"`},
		{"no match", "weather", "available tools: get_meal_notes, get_recent_requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reg.Fallback(tt.request)
			if !strings.HasPrefix(got, `unknown tool "`+tt.request+`"`) {
				t.Errorf("fallback prefix: %q", got)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("fallback %q does not contain %q", got, tt.contains)
			}
		})
	}
}
