package stream

import (
	"context"
	"errors"
	"testing"

	"mealplan/model"
)

func TestPipeDeliversInOrder(t *testing.T) {
	ctx := context.Background()
	p := NewPipe(ctx, func(ctx context.Context, emit model.StreamCallback) error {
		for _, chunk := range []string{"he", "llo"} {
			if err := emit(chunk, nil); err != nil {
				return err
			}
		}
		return emit("", []model.ToolCall{callX})
	})
	defer p.Close()

	res, err := Split(ctx, p)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	content, _ := res.Content()
	if content != "hello" {
		t.Errorf("content: got %q, want %q", content, "hello")
	}
	if len(res.ToolCalls()) != 1 {
		t.Errorf("expected 1 tool call, got %d", len(res.ToolCalls()))
	}
}

func TestPipeSplitsMixedChunk(t *testing.T) {
	ctx := context.Background()
	p := NewPipe(ctx, func(ctx context.Context, emit model.StreamCallback) error {
		return emit("thinking", []model.ToolCall{callY})
	})
	defer p.Close()

	s := NewSplitter(p)
	first, ok, err := s.Next(ctx)
	if err != nil || !ok || first.Phase != PhaseContent {
		t.Fatalf("first batch: %+v ok=%v err=%v", first, ok, err)
	}
	second, ok, err := s.Next(ctx)
	if err != nil || !ok || second.Phase != PhaseToolCalls {
		t.Fatalf("second batch: %+v ok=%v err=%v", second, ok, err)
	}
}

func TestPipeCloseStopsProducer(t *testing.T) {
	ctx := context.Background()
	stopped := make(chan error, 1)

	p := NewPipe(ctx, func(ctx context.Context, emit model.StreamCallback) error {
		for {
			if err := emit("x", nil); err != nil {
				stopped <- err
				return err
			}
		}
	})

	if _, err := p.Next(ctx); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close returned %v, want nil", err)
	}
	if err := <-stopped; !errors.Is(err, context.Canceled) {
		t.Errorf("producer stopped with %v, want context.Canceled", err)
	}
}

func TestPipeProducerError(t *testing.T) {
	boom := errors.New("model not found")
	ctx := context.Background()

	p := NewPipe(ctx, func(ctx context.Context, emit model.StreamCallback) error {
		return boom
	})

	if _, err := p.Next(ctx); !errors.Is(err, boom) {
		t.Errorf("Next: got %v, want %v", err, boom)
	}
	if err := p.Close(); !errors.Is(err, boom) {
		t.Errorf("Close: got %v, want %v", err, boom)
	}
}

func TestPipeInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := NewPipe(ctx, func(ctx context.Context, emit model.StreamCallback) error {
		if err := emit("partial", nil); err != nil {
			return err
		}
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	defer p.Close()

	res, err := Split(ctx, p)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if !res.Interrupted {
		t.Error("expected interrupted result")
	}
	if content, _ := res.Content(); content != "partial" {
		t.Errorf("content: got %q, want %q", content, "partial")
	}
}
