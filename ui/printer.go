// Package ui writes everything the operator sees: prompts, streamed tool
// activity, rendered meal plans and replayed transcripts.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"mealplan/config"
	"mealplan/model"
	"mealplan/tools"
)

const (
	defaultWidth = 80
	previewWidth = 120
)

// Printer renders session output to a writer
type Printer struct {
	out   io.Writer
	width int
	// Plain disables markdown rendering; set when the writer is not a terminal
	Plain bool
}

// NewPrinter writes to out. Markdown is rendered only when out is a terminal,
// sized to its width.
func NewPrinter(out io.Writer) *Printer {
	p := &Printer{out: out, width: defaultWidth, Plain: true}

	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.Plain = false
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			p.width = w
		}
	}

	return p
}

func (p *Printer) Width() int {
	return p.width
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// Prompt prints a styled prompt with no trailing newline
func (p *Printer) Prompt(label string) {
	fmt.Fprint(p.out, PromptStyle.Render(label)+" ")
}

// Section prints a styled marker line
func (p *Printer) Section(label string) {
	fmt.Fprintln(p.out, PromptStyle.Render(label))
}

func (p *Printer) Error(err error) {
	fmt.Fprintln(p.out, ErrorStyle.Render("error: ")+err.Error())
}

func (p *Printer) Dim(format string, a ...any) {
	fmt.Fprintln(p.out, DimStyle.Render(fmt.Sprintf(format, a...)))
}

// Markdown renders markdown for the terminal, or writes it through as-is in plain mode
func (p *Printer) Markdown(content string) {
	if p.Plain {
		fmt.Fprintln(p.out, strings.TrimRight(content, "\n"))
		return
	}

	// Autolink off so URLs stay plain text the terminal can detect
	ext := markdown.Extensions() &^ parser.Autolink
	doc := parser.NewWithExtensions(ext).Parse([]byte(content))
	rendered := gomarkdown.Render(doc, markdown.NewRenderer(p.width-4, 0))

	fmt.Fprint(p.out, string(rendered))
}

// MealPlan renders a validated plan
func (p *Printer) MealPlan(plan *model.MealPlan) {
	p.Markdown(plan.Markdown())
}

// ToolOutcome reports one dispatched tool call
func (p *Printer) ToolOutcome(o tools.Outcome) {
	name := ToolStyle.Render(o.Call.Name)
	switch {
	case o.Unknown:
		fmt.Fprintf(p.out, "%s %s\n", name, DimStyle.Render("(unknown tool)"))
	case o.Rejected():
		fmt.Fprintf(p.out, "%s %s\n", name, ErrorStyle.Render("rejected: "+o.Err.Error()))
	case o.Err != nil:
		fmt.Fprintf(p.out, "%s %s\n", name, ErrorStyle.Render("failed: "+o.Err.Error()))
	default:
		fmt.Fprintf(p.out, "%s %s -> %s\n", name, Preview(fmt.Sprint(o.Call.Arguments), previewWidth/3), Preview(o.Result, previewWidth))
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[ui] tool outcome %s err=%v", o.Call.Name, o.Err)
	}
}

// Preview flattens s to one line and truncates it to width cells
func Preview(s string, width int) string {
	flat := strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(flat, width, "...")
}
