package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mealplan/config"
	"mealplan/model"
)

// Outcome is what happened to one requested call
type Outcome struct {
	Call   model.ToolCall
	Result string
	Err    error
	// Unknown is set when the name did not resolve and the fallback reply was used
	Unknown bool
}

// Rejected reports whether a constraint refused the call
func (o Outcome) Rejected() bool {
	return o.Err != nil && IsConstraint(o.Err)
}

// Message is the tool turn appended to the conversation for this outcome
func (o Outcome) Message() model.Message {
	switch {
	case o.Err == nil:
		return model.ToolMessage(o.Call.Name, o.Result)
	case o.Rejected():
		return model.ToolMessage(o.Call.Name, "rejected: "+o.Err.Error())
	default:
		return model.ToolMessage(o.Call.Name, "error: "+o.Err.Error())
	}
}

// Round is the result of dispatching one round of tool calls
type Round struct {
	Outcomes    []Outcome
	Interrupted bool
}

// Messages returns one tool message per outcome, in call order
func (r Round) Messages() []model.Message {
	msgs := make([]model.Message, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		msgs = append(msgs, o.Message())
	}
	return msgs
}

// Dispatcher runs tool calls against a Registry one at a time
type Dispatcher struct {
	registry *Registry

	// ReportUnknown answers unknown tool names with the registry fallback
	// instead of skipping them.
	ReportUnknown bool

	// OnOutcome, when set, is called after each call completes or is rejected
	OnOutcome func(Outcome)
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch runs calls in order. Cancelling ctx stops the round; outcomes of
// calls that already finished are kept and the round is marked interrupted.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []model.ToolCall) Round {
	var round Round

	for _, call := range calls {
		if ctx.Err() != nil {
			round.Interrupted = true
			break
		}

		tool, ok := d.registry.Lookup(call.Name)
		if !ok {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[tools] unknown tool requested: %s", call.Name)
			}
			if !d.ReportUnknown {
				continue
			}
			d.record(&round, Outcome{Call: call, Result: d.registry.Fallback(call.Name), Unknown: true})
			continue
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("[tools] calling %s with %v", call.Name, call.Arguments)
		}

		result, err := tool.Call(ctx, call.Arguments)
		if err != nil && errors.Is(err, context.Canceled) {
			round.Interrupted = true
			break
		}

		outcome := Outcome{Call: call, Err: err}
		if err == nil {
			outcome.Result, outcome.Err = Stringify(result)
		}
		d.record(&round, outcome)

		if ctx.Err() != nil {
			round.Interrupted = true
			break
		}
	}

	if round.Interrupted && config.DebugLog != nil {
		config.DebugLog.Printf("[tools] round interrupted after %d of %d calls", len(round.Outcomes), len(calls))
	}

	return round
}

func (d *Dispatcher) record(round *Round, outcome Outcome) {
	if outcome.Err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[tools] %s failed: %v", outcome.Call.Name, outcome.Err)
	}
	round.Outcomes = append(round.Outcomes, outcome)
	if d.OnOutcome != nil {
		d.OnOutcome(outcome)
	}
}

// Stringify renders a tool result as text. Strings pass through unchanged.
func Stringify(result any) (string, error) {
	switch v := result.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.RawMessage:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to serialize tool result: %w", err)
	}
	return string(data), nil
}
