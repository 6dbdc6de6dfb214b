package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mealplan/config"
	"mealplan/model"
	"mealplan/provider"
	"mealplan/session"
	"mealplan/storage"
	"mealplan/tools"
	"mealplan/ui"
)

// app holds what every command needs once config is loaded
type app struct {
	cfg     *config.Config
	store   *storage.Store
	printer *ui.Printer
	in      *bufio.Reader

	// model overrides the configured model name for this run
	model string
}

func newApp(out io.Writer, in io.Reader) (*app, error) {
	if config.HasAnyEnvVar() && !config.HasAllEnvVars() {
		return nil, fmt.Errorf("missing environment variable %s: when using environment variables, MEALPLAN_OLLAMA_HOST, MEALPLAN_MODEL and MEALPLAN_DATA_DIR must all be set", config.GetMissingEnvVar())
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	config.InitDebugLog(cfg.DataDir())

	store, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &app{
		cfg:     cfg,
		store:   store,
		printer: ui.NewPrinter(out),
		in:      bufio.NewReader(in),
	}, nil
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// newSession wires a provider and the builtin tools into a session seeded with history
func (a *app) newSession(ctx context.Context, history []model.Message) (*session.Session, error) {
	p, err := a.newProvider()
	if err != nil {
		return nil, err
	}
	if err := checkProvider(ctx, p, a.printer); err != nil {
		return nil, err
	}

	registry, err := tools.NewBuiltinRegistry(a.store, a.cfg.Tools)
	if err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[main] %s model %s, %d tools, max %d tool rounds",
			config.ProviderDisplayName(a.cfg.Provider), p.GetModel(), registry.Len(), a.cfg.MaxToolRounds)
	}

	return session.New(session.Options{
		Provider:      p,
		Registry:      registry,
		Printer:       a.printer,
		Input:         a.in,
		Store:         a.store,
		History:       history,
		InitialPrompt: session.InitialPrompt(a.cfg.Kitchen),
		MaxToolRounds: a.cfg.MaxToolRounds,
		ReportUnknown: a.cfg.Tools.ReportUnknown,
	})
}

func (a *app) newProvider() (model.Provider, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	p, err := provider.NewProvider(provider.FromConfig(a.cfg))
	if err != nil {
		return nil, err
	}
	if a.model != "" {
		p.SetModel(a.model)
	}
	return p, nil
}

// toolSupport is implemented by providers that know which models handle tools
type toolSupport interface {
	SupportsToolCalling() bool
}

// checkProvider fails fast when the provider cannot be reached and warns when
// the selected model is not known to support tool calling
func checkProvider(ctx context.Context, p model.Provider, printer *ui.Printer) error {
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("cannot reach model provider: %w", err)
	}
	if ts, ok := p.(toolSupport); ok && !ts.SupportsToolCalling() {
		printer.Dim("model %s is not known to support tool calling; notes and recent requests may be ignored", p.GetModel())
	}
	return nil
}

// ask prints a prompt and reads one trimmed line
func (a *app) ask(label string) (string, error) {
	a.printer.Prompt(label)
	line, err := a.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// parseID reads an optional conversation id argument; absent or "latest" means the newest
func parseID(args []string) (int64, error) {
	if len(args) == 0 || args[0] == "" || args[0] == "latest" {
		return storage.Latest, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid conversation id %q", args[0])
	}
	return id, nil
}

// splitList turns "a, b,,c" into [a b c]
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
