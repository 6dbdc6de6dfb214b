// Package stream turns a model's streamed response into typed phases.
//
// Providers deliver a response as a sequence of fragments, each carrying
// either a text delta or a list of tool call requests. A Source exposes that
// sequence one fragment at a time; a Splitter groups contiguous fragments of
// the same kind into batches.
package stream

import (
	"context"
	"io"

	"mealplan/model"
)

// Phase classifies a fragment as free text or tool call requests
type Phase string

const (
	PhaseContent   Phase = "content"
	PhaseToolCalls Phase = "tool_calls"
)

// Fragment is one incremental piece of a streamed model response
type Fragment struct {
	Content   string
	ToolCalls []model.ToolCall
}

// Phase reports which phase the fragment belongs to.
// A fragment with no payload has no phase and ends the stream.
func (f Fragment) Phase() (Phase, bool) {
	switch {
	case len(f.ToolCalls) > 0:
		return PhaseToolCalls, true
	case f.Content != "":
		return PhaseContent, true
	default:
		return "", false
	}
}

// ContentFragment builds a text fragment
func ContentFragment(text string) Fragment {
	return Fragment{Content: text}
}

// ToolCallFragment builds a tool call fragment
func ToolCallFragment(calls ...model.ToolCall) Fragment {
	return Fragment{ToolCalls: calls}
}

// Source yields fragments in arrival order.
// Next returns io.EOF once the sequence has ended naturally.
type Source interface {
	Next(ctx context.Context) (Fragment, error)
}

// SliceSource replays a fixed list of fragments
type SliceSource struct {
	fragments []Fragment
	pos       int
	pulled    int
}

func NewSliceSource(fragments ...Fragment) *SliceSource {
	return &SliceSource{fragments: fragments}
}

func (s *SliceSource) Next(ctx context.Context) (Fragment, error) {
	if err := ctx.Err(); err != nil {
		return Fragment{}, err
	}
	if s.pos >= len(s.fragments) {
		return Fragment{}, io.EOF
	}
	f := s.fragments[s.pos]
	s.pos++
	s.pulled++
	return f, nil
}

// Pulled returns how many fragments have been consumed so far
func (s *SliceSource) Pulled() int {
	return s.pulled
}
