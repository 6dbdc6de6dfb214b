// Package session runs the conversation loop: it reads user turns, streams
// tool rounds until the model stops asking for tools, collects one structured
// final answer per turn and persists the transcript on exit.
package session

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"mealplan/config"
	"mealplan/model"
	"mealplan/stream"
	"mealplan/tools"
	"mealplan/ui"
)

// Store is the part of the transcript store a session writes to
type Store interface {
	InsertConversation(ctx context.Context, messages []model.Message) (int64, error)
}

// Options configures a Session. Provider, Registry, Printer and Input are required.
type Options struct {
	Provider model.Provider
	Registry *tools.Registry
	Printer  *ui.Printer
	Input    io.Reader

	// Store receives the transcript on exit; nil disables persistence
	Store Store

	// History seeds the conversation, as when rewinding a stored one
	History []model.Message

	// InitialPrompt is sent as the first user turn when History is empty
	InitialPrompt string

	MaxToolRounds int
	ReportUnknown bool

	// Schema and Validate define the structured final answer.
	// They default to the meal plan schema and validator.
	Schema   json.RawMessage
	Validate func(content string) error

	// Interrupt scopes a context to one round so Ctrl-C cancels only that round.
	// Defaults to signal.NotifyContext on os.Interrupt.
	Interrupt func(ctx context.Context) (context.Context, context.CancelFunc)
}

// Session owns the in-memory transcript of one conversation
type Session struct {
	provider   model.Provider
	registry   *tools.Registry
	dispatcher *tools.Dispatcher
	printer    *ui.Printer
	input      *bufio.Scanner
	store      Store

	messages      []model.Message
	initialPrompt string
	maxToolRounds int
	schema        json.RawMessage
	validate      func(string) error
	interrupt     func(context.Context) (context.Context, context.CancelFunc)

	state  State
	turned bool
}

func New(opts Options) (*Session, error) {
	if opts.Provider == nil || opts.Registry == nil || opts.Printer == nil || opts.Input == nil {
		return nil, fmt.Errorf("session requires a provider, registry, printer and input")
	}

	s := &Session{
		provider:      opts.Provider,
		registry:      opts.Registry,
		printer:       opts.Printer,
		input:         bufio.NewScanner(opts.Input),
		store:         opts.Store,
		messages:      model.CloneMessages(opts.History),
		initialPrompt: opts.InitialPrompt,
		maxToolRounds: opts.MaxToolRounds,
		schema:        opts.Schema,
		validate:      opts.Validate,
		interrupt:     opts.Interrupt,
		state:         AwaitingUserInput,
	}

	if s.maxToolRounds <= 0 {
		s.maxToolRounds = config.DefaultMaxToolRounds
	}
	if s.schema == nil {
		schema, err := model.MealPlanSchema()
		if err != nil {
			return nil, err
		}
		s.schema = schema
	}
	if s.validate == nil {
		s.validate = model.ValidateMealPlan
	}
	if s.interrupt == nil {
		s.interrupt = func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		}
	}

	s.dispatcher = tools.NewDispatcher(opts.Registry)
	s.dispatcher.ReportUnknown = opts.ReportUnknown
	s.dispatcher.OnOutcome = s.printer.ToolOutcome

	return s, nil
}

// Messages returns a copy of the current transcript
func (s *Session) Messages() []model.Message {
	return model.CloneMessages(s.messages)
}

func (s *Session) State() State {
	return s.state
}

// Run drives the loop until input ends, ctx is cancelled, or a round fails.
// If any user turn happened the transcript is stored as a new conversation,
// whose id is returned (0 when nothing was stored). A failed round does not
// prevent the messages gathered before it from being stored.
func (s *Session) Run(ctx context.Context) (int64, error) {
	var runErr error
	rounds := 0

	for s.state != Terminated {
		if err := ctx.Err(); err != nil {
			runErr = err
			s.transition(Terminated)
			break
		}

		switch s.state {
		case AwaitingUserInput:
			content, ok, err := s.nextInput()
			if err != nil {
				runErr = err
				s.transition(Terminated)
				continue
			}
			if !ok {
				s.transition(Terminated)
				continue
			}
			s.messages = append(s.messages, model.UserMessage(content))
			s.turned = true
			rounds = 0
			s.transition(StreamingToolRound)

		case StreamingToolRound:
			more, err := s.toolRound(ctx)
			if err != nil {
				runErr = err
				s.transition(Terminated)
				continue
			}
			rounds++
			if !more {
				s.transition(StreamingFinalRound)
				continue
			}
			if rounds >= s.maxToolRounds {
				if config.DebugLog != nil {
					config.DebugLog.Printf("[session] reached %d tool rounds, moving to final round", rounds)
				}
				s.printer.Dim("tool round limit reached")
				s.transition(StreamingFinalRound)
			}

		case StreamingFinalRound:
			if err := s.finalRound(ctx); err != nil {
				runErr = err
				s.transition(Terminated)
				continue
			}
			s.transition(AwaitingUserInput)
		}
	}

	id, err := s.persist(ctx)
	if err != nil {
		return 0, errors.Join(runErr, err)
	}
	return id, runErr
}

func (s *Session) transition(next State) {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[session] %s -> %s", s.state, next)
	}
	s.state = next
}

// nextInput returns the generated initial prompt for an empty conversation,
// then typed lines. ok is false on an empty line or end of input.
func (s *Session) nextInput() (content string, ok bool, err error) {
	if len(s.messages) == 0 && s.initialPrompt != "" {
		s.printer.Println(s.initialPrompt)
		s.printer.Section("===")
		return s.initialPrompt, true, nil
	}

	s.printer.Prompt(">>>")
	if !s.input.Scan() {
		if err := s.input.Err(); err != nil {
			return "", false, fmt.Errorf("failed to read input: %w", err)
		}
		s.printer.Println()
		return "", false, nil
	}

	line := strings.TrimSpace(s.input.Text())
	if line == "" {
		return "", false, nil
	}
	return line, true, nil
}

// streamRound runs one streamed request under its own interrupt scope
func (s *Session) streamRound(ctx context.Context, produce stream.Producer) (stream.Result, error) {
	rctx, stop := s.interrupt(ctx)
	defer stop()

	pipe := stream.NewPipe(rctx, produce)
	res, err := stream.Split(rctx, pipe)
	closeErr := pipe.Close()

	// Cancellation of the parent is shutdown, not an operator interrupt
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	if err != nil {
		return res, err
	}
	if closeErr != nil && !res.Interrupted {
		return res, closeErr
	}
	return res, nil
}

// toolRound streams one reply with tools advertised and dispatches the calls
// it asks for. more reports whether another tool round should follow.
func (s *Session) toolRound(ctx context.Context) (more bool, err error) {
	history := s.Messages()
	advertised := s.registry.All()

	res, err := s.streamRound(ctx, func(ctx context.Context, emit model.StreamCallback) error {
		return s.provider.ChatWithTools(ctx, history, advertised, emit)
	})
	if err != nil {
		return false, fmt.Errorf("failed to stream tool round: %w", err)
	}

	if text, ok := res.Content(); ok && strings.TrimSpace(text) != "" {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[session] tool round content ignored: %q", ui.Preview(text, 200))
		}
	}
	if res.Interrupted {
		s.printer.Dim("interrupted model")
	}

	calls := res.ToolCalls()
	if len(calls) == 0 {
		return false, nil
	}

	dctx, stop := s.interrupt(ctx)
	round := s.dispatcher.Dispatch(dctx, calls)
	stop()

	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if round.Interrupted {
		s.printer.Dim("interrupted tools")
	}

	s.messages = append(s.messages, round.Messages()...)

	// A round that appended nothing would resend the same history
	if len(round.Outcomes) == 0 {
		return false, nil
	}
	return !res.Interrupted && !round.Interrupted, nil
}

// finalRound asks for the structured answer and appends it once it validates.
// An interrupted final round abandons the turn without appending anything.
func (s *Session) finalRound(ctx context.Context) error {
	s.printer.Section("Collecting structured response")

	history := s.Messages()
	res, err := s.streamRound(ctx, func(ctx context.Context, emit model.StreamCallback) error {
		return s.provider.ChatStructured(ctx, history, s.schema, emit)
	})
	if err != nil {
		return fmt.Errorf("failed to stream final round: %w", err)
	}
	if res.Interrupted {
		s.printer.Dim("interrupted model, turn abandoned")
		return nil
	}

	content, _ := res.Content()
	if err := s.validate(content); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[session] invalid final answer: %q", ui.Preview(content, 500))
		}
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	s.messages = append(s.messages, model.AssistantMessage(content))

	if plan, err := model.ParseMealPlan(content); err == nil {
		s.printer.MealPlan(plan)
	} else {
		s.printer.Println(content)
	}
	return nil
}

func (s *Session) persist(ctx context.Context) (int64, error) {
	if !s.turned || s.store == nil || len(s.messages) == 0 {
		return 0, nil
	}

	// Saving must still happen when the run was cancelled
	id, err := s.store.InsertConversation(context.WithoutCancel(ctx), s.messages)
	if err != nil {
		return 0, fmt.Errorf("failed to save conversation: %w", err)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[session] saved conversation %d with %d messages", id, len(s.messages))
	}
	s.printer.Dim("saved conversation %d", id)
	return id, nil
}
