package stream

import (
	"context"
	"errors"
	"io"
	"strings"

	"mealplan/model"
)

// Batch is a maximal run of contiguous fragments sharing one phase
type Batch struct {
	Phase     Phase
	Content   string
	ToolCalls []model.ToolCall
}

// Splitter pulls fragments from a Source and groups them into batches.
// It reads lazily: a fragment is only pulled when the caller asks for the
// next batch, and reading stops at the first fragment without payload.
type Splitter struct {
	src         Source
	pending     *Fragment
	text        strings.Builder
	done        bool
	interrupted bool
}

func NewSplitter(src Source) *Splitter {
	return &Splitter{src: src}
}

// Next returns the next batch. ok is false once the stream has ended.
// Cancellation of ctx ends the stream with the partial batch returned and
// Interrupted reporting true; err is only set for source failures.
func (s *Splitter) Next(ctx context.Context) (batch Batch, ok bool, err error) {
	if s.done {
		return Batch{}, false, nil
	}

	s.text.Reset()
	started := false
	finish := func() (Batch, bool, error) {
		if !started {
			return Batch{}, false, nil
		}
		if batch.Phase == PhaseContent {
			batch.Content = s.text.String()
		}
		return batch, true, nil
	}

	for {
		var frag Fragment
		if s.pending != nil {
			frag, s.pending = *s.pending, nil
		} else {
			frag, err = s.src.Next(ctx)
			if err != nil {
				s.done = true
				switch {
				case errors.Is(err, io.EOF):
					return finish()
				case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
					s.interrupted = true
					return finish()
				default:
					return Batch{}, false, err
				}
			}
		}

		phase, hasPayload := frag.Phase()
		if !hasPayload {
			s.done = true
			return finish()
		}

		if !started {
			batch.Phase = phase
			started = true
		} else if phase != batch.Phase {
			s.pending = &frag
			return finish()
		}

		switch phase {
		case PhaseContent:
			s.text.WriteString(frag.Content)
		case PhaseToolCalls:
			batch.ToolCalls = append(batch.ToolCalls, frag.ToolCalls...)
		}
	}
}

// Interrupted reports whether consumption was stopped by cancellation
func (s *Splitter) Interrupted() bool {
	return s.interrupted
}

// Result holds at most one accumulated value per phase
type Result struct {
	batches     map[Phase]Batch
	Interrupted bool
}

// Content returns the accumulated text and whether a content phase was seen
func (r Result) Content() (string, bool) {
	b, ok := r.batches[PhaseContent]
	return b.Content, ok
}

// ToolCalls returns the accumulated tool call requests
func (r Result) ToolCalls() []model.ToolCall {
	return r.batches[PhaseToolCalls].ToolCalls
}

// Has reports whether the phase appeared in the response
func (r Result) Has(phase Phase) bool {
	_, ok := r.batches[phase]
	return ok
}

// Split consumes src to the end and returns one entry per phase.
// When a phase appears in more than one run, the later run replaces the
// earlier one. An interrupt keeps whatever was accumulated before it.
func Split(ctx context.Context, src Source) (Result, error) {
	s := NewSplitter(src)
	res := Result{batches: make(map[Phase]Batch, 2)}

	for {
		batch, ok, err := s.Next(ctx)
		if err != nil {
			res.Interrupted = s.Interrupted()
			return res, err
		}
		if !ok {
			break
		}
		res.batches[batch.Phase] = batch
	}

	res.Interrupted = s.Interrupted()
	return res, nil
}
