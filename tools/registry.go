// Package tools holds the static set of tools the model may call, the
// constraints that guard them, and the dispatcher that runs a round of
// tool call requests.
package tools

import (
	"context"
	"fmt"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/sahilm/fuzzy"

	"mealplan/mcp"
)

// Func is the body of a tool
type Func func(ctx context.Context, args map[string]any) (any, error)

// Tool pairs a tool definition with its body and constraints.
// Constraint state lives for the life of the process.
type Tool struct {
	Spec        mcptypes.Tool
	fn          Func
	constraints []Constraint
}

// NewTool builds a tool from its advertised definition, body and constraints
func NewTool(spec mcptypes.Tool, fn Func, constraints ...Constraint) *Tool {
	return &Tool{Spec: spec, fn: fn, constraints: constraints}
}

func (t *Tool) Name() string {
	return t.Spec.Name
}

// Call runs the tool if every constraint accepts the arguments.
// A rejected call never reaches the body and changes no constraint state.
func (t *Tool) Call(ctx context.Context, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}

	for _, c := range t.constraints {
		if err := c.Check(args); err != nil {
			return nil, err
		}
	}
	for _, c := range t.constraints {
		c.Commit(args)
	}

	return t.fn(ctx, args)
}

// Registry is the fixed set of tools known at startup
type Registry struct {
	tools map[string]*Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(tool *Tool) error {
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool has no name")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Lookup(name string) (*Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// All returns the tool definitions in registration order, ready to advertise
func (r *Registry) All() []mcptypes.Tool {
	specs := make([]mcptypes.Tool, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].Spec)
	}
	return specs
}

func (r *Registry) Len() int {
	return len(r.order)
}

// Fallback returns the fixed reply for a tool name that is not registered,
// pointing at the closest registered name when there is one.
func (r *Registry) Fallback(name string) string {
	msg := fmt.Sprintf("unknown tool %q", name)

	matches := fuzzy.Find(name, r.order)
	if len(matches) > 0 {
		return fmt.Sprintf("%s, did you mean %q?", msg, matches[0].Str)
	}
	if len(r.order) > 0 {
		return fmt.Sprintf("%s, available tools: %s", msg, strings.Join(mcp.Names(r.All()), ", "))
	}
	return msg
}
