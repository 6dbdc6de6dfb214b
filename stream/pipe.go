package stream

import (
	"context"
	"errors"
	"io"

	"mealplan/model"
)

// Producer pushes a streamed response through emit, the way providers do
type Producer func(ctx context.Context, emit model.StreamCallback) error

// Pipe adapts a push-style Producer into a pull-style Source.
// The producer runs on its own goroutine and blocks until each fragment is
// pulled, so nothing is read from the model ahead of the consumer.
type Pipe struct {
	fragments chan Fragment
	done      chan struct{}
	cancel    context.CancelFunc
	err       error
}

// NewPipe starts produce and returns a Source over its fragments.
// Close must be called to release the producer.
func NewPipe(ctx context.Context, produce Producer) *Pipe {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pipe{
		fragments: make(chan Fragment),
		done:      make(chan struct{}),
		cancel:    cancel,
	}

	go func() {
		defer close(p.done)
		defer close(p.fragments)

		p.err = produce(ctx, func(chunk string, toolCalls []model.ToolCall) error {
			// A chunk carrying both kinds becomes two fragments, text first
			if chunk != "" && len(toolCalls) > 0 {
				if err := p.send(ctx, ContentFragment(chunk)); err != nil {
					return err
				}
				return p.send(ctx, ToolCallFragment(toolCalls...))
			}
			return p.send(ctx, Fragment{Content: chunk, ToolCalls: toolCalls})
		})
	}()

	return p
}

func (p *Pipe) send(ctx context.Context, f Fragment) error {
	select {
	case p.fragments <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipe) Next(ctx context.Context) (Fragment, error) {
	select {
	case <-ctx.Done():
		return Fragment{}, ctx.Err()
	case f, ok := <-p.fragments:
		if !ok {
			// The channel is closed after err is set
			if p.err != nil {
				return Fragment{}, p.err
			}
			return Fragment{}, io.EOF
		}
		return f, nil
	}
}

// Close stops the producer and waits for it to return
func (p *Pipe) Close() error {
	p.cancel()
	<-p.done
	if p.err != nil && !errors.Is(p.err, context.Canceled) {
		return p.err
	}
	return nil
}
