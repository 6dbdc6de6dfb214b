package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"mealplan/model"
	"mealplan/storage"
	"mealplan/tools"
)

const testPlan = `{"grocery_list":["rice"],"meals":[` +
	`{"name":"Fried rice","ingredients":["rice"],"steps":["fry"]},` +
	`{"name":"Congee","ingredients":["rice"],"steps":["simmer"]},` +
	`{"name":"Rice salad","ingredients":["rice"],"steps":["toss"]}]}`

func newTestPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPrinter(&buf), &buf
}

func TestNewPrinterPlainForNonTerminal(t *testing.T) {
	p, _ := newTestPrinter()
	if !p.Plain {
		t.Error("expected plain mode for a buffer")
	}
	if p.Width() != defaultWidth {
		t.Errorf("Width() = %d, want %d", p.Width(), defaultWidth)
	}
}

func TestTranscript(t *testing.T) {
	p, buf := newTestPrinter()

	p.Transcript([]model.Message{
		model.UserMessage("plan dinners"),
		model.ToolMessage("get_meal_notes", `[{"note":"more soup"}]`),
		model.AssistantMessage(testPlan),
	})
	out := buf.String()

	for _, want := range []string{
		"<user>\nplan dinners\n</user>",
		"<tool>\nget_meal_notes\n[\n  {\n    \"note\": \"more soup\"\n  }\n]\n</tool>",
		"# Grocery list",
		"## Congee",
		"</assistant>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTranscriptNonJSONFallsBack(t *testing.T) {
	p, buf := newTestPrinter()

	p.Transcript([]model.Message{
		model.ToolMessage("get_food_details", "error: not implemented"),
		model.AssistantMessage("not a plan"),
	})

	out := buf.String()
	if !strings.Contains(out, "error: not implemented") || !strings.Contains(out, "not a plan") {
		t.Errorf("raw content not printed:\n%s", out)
	}
}

func TestToolOutcome(t *testing.T) {
	tests := []struct {
		name    string
		outcome tools.Outcome
		want    string
	}{
		{
			name:    "success",
			outcome: tools.Outcome{Call: model.ToolCall{Name: "get_meal_notes"}, Result: "[]"},
			want:    "get_meal_notes",
		},
		{
			name:    "rejected",
			outcome: tools.Outcome{Call: model.ToolCall{Name: "get_meal_notes"}, Err: tools.ErrCallLimitExceeded},
			want:    "rejected:",
		},
		{
			name:    "failed",
			outcome: tools.Outcome{Call: model.ToolCall{Name: "get_food_details"}, Err: errors.New("boom")},
			want:    "failed: boom",
		},
		{
			name:    "unknown",
			outcome: tools.Outcome{Call: model.ToolCall{Name: "nope"}, Unknown: true},
			want:    "(unknown tool)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, buf := newTestPrinter()
			p.ToolOutcome(tt.outcome)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("got %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("a\n  b\tc", 20); got != "a b c" {
		t.Errorf("Preview() = %q", got)
	}
	got := Preview(strings.Repeat("x", 50), 10)
	if len(got) != 10 || !strings.HasSuffix(got, "...") {
		t.Errorf("Preview() = %q, want 10 cells ending in ...", got)
	}
}

func TestListings(t *testing.T) {
	p, buf := newTestPrinter()

	p.Conversations(nil)
	p.Conversations([]storage.ConversationSummary{{ID: 7, CreatedAt: time.Now(), MessageCount: 3, Annotated: true}})
	p.Matches([]storage.MessageMatch{{ConversationID: 7, Position: 1, Role: "user", Preview: "more soup"}})
	p.Annotations([]storage.Annotation{{ConversationID: 7, Note: "good", Likes: []string{"soup"}, Dislikes: []string{"kale"}}})

	out := buf.String()
	for _, want := range []string{"no conversations stored", "*    7", "3 messages", "more soup", "conversation 7", "likes: soup", "dislikes: kale"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
