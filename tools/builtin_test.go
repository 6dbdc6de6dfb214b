package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mealplan/config"
	"mealplan/model"
	"mealplan/storage"
)

type fakeHistory struct {
	notes     []storage.Annotation
	followUps []string
	err       error
	sampledN  int
}

func (f *fakeHistory) SampleAnnotations(ctx context.Context, n int) ([]storage.Annotation, error) {
	f.sampledN = n
	if n < len(f.notes) {
		return f.notes[:n], nil
	}
	return f.notes, nil
}

func (f *fakeHistory) UserFollowUps(ctx context.Context, id int64) ([]string, error) {
	return f.followUps, f.err
}

func TestBuiltinRegistry(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ToolsConfig
		want []string
	}{
		{
			name: "defaults",
			cfg:  config.DefaultToolsConfig(),
			want: []string{MealNotesTool, RecentRequestsTool},
		},
		{
			name: "food lookup enabled",
			cfg:  config.ToolsConfig{MealNotesLimit: 1, RecentRequestsLimit: 1, FoodLookup: true},
			want: []string{MealNotesTool, RecentRequestsTool, FoodDetailsTool},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewBuiltinRegistry(&fakeHistory{}, tt.cfg)
			if err != nil {
				t.Fatalf("NewBuiltinRegistry failed: %v", err)
			}
			var got []string
			for _, spec := range reg.All() {
				got = append(got, spec.Name)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("tools: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMealNotesTool(t *testing.T) {
	history := &fakeHistory{notes: []storage.Annotation{
		{ConversationID: 1, Note: "too spicy", Dislikes: []string{"chili"}},
		{ConversationID: 2, Likes: []string{"curry"}},
		{ConversationID: 3, Note: "great"},
		{ConversationID: 4, Note: "bland"},
	}}
	reg, err := NewBuiltinRegistry(history, config.DefaultToolsConfig())
	if err != nil {
		t.Fatalf("NewBuiltinRegistry failed: %v", err)
	}

	d := NewDispatcher(reg)
	round := d.Dispatch(context.Background(), []model.ToolCall{
		{Name: MealNotesTool, Arguments: map[string]any{"n": float64(2)}},
		{Name: MealNotesTool, Arguments: map[string]any{"n": float64(4)}},
	})

	if len(round.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(round.Outcomes))
	}
	if history.sampledN != 2 {
		t.Errorf("sampled n: got %d, want 2", history.sampledN)
	}

	var notes []storage.Annotation
	if err := json.Unmarshal([]byte(round.Outcomes[0].Result), &notes); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(notes) != 2 || notes[0].Note != "too spicy" {
		t.Errorf("unexpected notes: %+v", notes)
	}

	// Default limit is one call per process
	if !errors.Is(round.Outcomes[1].Err, ErrCallLimitExceeded) {
		t.Errorf("second call: got %v, want ErrCallLimitExceeded", round.Outcomes[1].Err)
	}
}

func TestRecentRequestsTool(t *testing.T) {
	tests := []struct {
		name    string
		history *fakeHistory
		want    string
	}{
		{"follow ups", &fakeHistory{followUps: []string{"no fish", "more rice"}}, `["no fish","more rice"]`},
		{"no conversations yet", &fakeHistory{err: storage.ErrNotFound}, `[]`},
		{"no follow ups", &fakeHistory{}, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewBuiltinRegistry(tt.history, config.DefaultToolsConfig())
			if err != nil {
				t.Fatalf("NewBuiltinRegistry failed: %v", err)
			}
			round := NewDispatcher(reg).Dispatch(context.Background(), []model.ToolCall{{Name: RecentRequestsTool}})
			if len(round.Outcomes) != 1 || round.Outcomes[0].Err != nil {
				t.Fatalf("unexpected outcomes: %+v", round.Outcomes)
			}
			if round.Outcomes[0].Result != tt.want {
				t.Errorf("got %s, want %s", round.Outcomes[0].Result, tt.want)
			}
		})
	}
}

func TestFoodDetailsStub(t *testing.T) {
	cfg := config.DefaultToolsConfig()
	cfg.FoodLookup = true
	reg, err := NewBuiltinRegistry(&fakeHistory{}, cfg)
	if err != nil {
		t.Fatalf("NewBuiltinRegistry failed: %v", err)
	}

	round := NewDispatcher(reg).Dispatch(context.Background(), []model.ToolCall{
		{Name: FoodDetailsTool, Arguments: map[string]any{"food": "rice"}},
		{Name: FoodDetailsTool, Arguments: map[string]any{"food": "rice"}},
	})

	if !errors.Is(round.Outcomes[0].Err, ErrNotImplemented) {
		t.Errorf("first call: got %v, want ErrNotImplemented", round.Outcomes[0].Err)
	}
	if !errors.Is(round.Outcomes[1].Err, ErrDuplicateCall) {
		t.Errorf("second call: got %v, want ErrDuplicateCall", round.Outcomes[1].Err)
	}
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		want    int
		wantErr bool
	}{
		{"missing", map[string]any{}, 3, false},
		{"float", map[string]any{"n": float64(5)}, 5, false},
		{"int", map[string]any{"n": 7}, 7, false},
		{"json number", map[string]any{"n": json.Number("2")}, 2, false},
		{"string", map[string]any{"n": "4"}, 4, false},
		{"bad string", map[string]any{"n": "four"}, 0, true},
		{"bool", map[string]any{"n": true}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := intArg(tt.args, "n", 3)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
