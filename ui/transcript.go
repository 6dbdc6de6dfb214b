package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"mealplan/model"
	"mealplan/storage"
)

// Transcript replays a stored conversation, one tagged block per message.
// Tool results are pretty-printed JSON and assistant answers are rendered plans.
func (p *Printer) Transcript(messages []model.Message) {
	for _, msg := range messages {
		role := string(msg.Role)
		style := RoleStyle(role)

		fmt.Fprintln(p.out, style.Render("<"+role+">"))
		switch msg.Role {
		case model.RoleTool:
			fmt.Fprintln(p.out, msg.ToolName)
			fmt.Fprintln(p.out, prettyJSON(msg.Content))
		case model.RoleAssistant:
			if plan, err := model.ParseMealPlan(msg.Content); err == nil {
				p.MealPlan(plan)
			} else {
				fmt.Fprintln(p.out, msg.Content)
			}
		default:
			fmt.Fprintln(p.out, msg.Content)
		}
		fmt.Fprintln(p.out, style.Render("</"+role+">"))
	}
}

// prettyJSON indents content when it is JSON and returns it unchanged otherwise
func prettyJSON(content string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(content), "", "  "); err != nil {
		return content
	}
	return buf.String()
}

// Conversations lists stored conversations, newest first
func (p *Printer) Conversations(list []storage.ConversationSummary) {
	if len(list) == 0 {
		p.Dim("no conversations stored")
		return
	}
	for _, c := range list {
		mark := " "
		if c.Annotated {
			mark = "*"
		}
		fmt.Fprintf(p.out, "%s %4d  %s  %d messages\n",
			mark, c.ID, DimStyle.Render(c.CreatedAt.Local().Format("2006-01-02 15:04")), c.MessageCount)
	}
}

// Matches lists search hits
func (p *Printer) Matches(matches []storage.MessageMatch) {
	if len(matches) == 0 {
		p.Dim("no matches")
		return
	}
	for _, m := range matches {
		fmt.Fprintf(p.out, "%4d:%-3d %s %s\n", m.ConversationID, m.Position, RoleStyle(m.Role).Render(m.Role), m.Preview)
	}
}

// Annotations prints notes with their likes and dislikes
func (p *Printer) Annotations(notes []storage.Annotation) {
	if len(notes) == 0 {
		p.Dim("no notes stored")
		return
	}
	for i, a := range notes {
		if i > 0 {
			fmt.Fprintln(p.out)
		}
		fmt.Fprintln(p.out, TitleStyle.Render(fmt.Sprintf("conversation %d", a.ConversationID)))
		if a.Note != "" {
			fmt.Fprintln(p.out, a.Note)
		}
		if len(a.Likes) > 0 {
			fmt.Fprintln(p.out, UserStyle.Render("likes: ")+strings.Join(a.Likes, ", "))
		}
		if len(a.Dislikes) > 0 {
			fmt.Fprintln(p.out, ErrorStyle.Render("dislikes: ")+strings.Join(a.Dislikes, ", "))
		}
	}
}
