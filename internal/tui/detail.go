package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/gosuda/taskflow/internal/domain"
	"github.com/gosuda/taskflow/internal/view"
)

const detailWrap = 80

// cardDetail is the read-only pane of one card.
type cardDetail struct {
	card *domain.Card
	body string
}

func newCardDetail(c *domain.Card, r *glamour.TermRenderer) *cardDetail {
	return &cardDetail{card: c.Clone(), body: renderMarkdown(r, c.Description)}
}

func (d *cardDetail) View(t view.Theme) string {
	c := d.card
	var sb strings.Builder
	sb.WriteString(t.Title.Render(c.Title) + "  " + t.Priority(c.Priority).Render(c.Priority.Label()))
	if c.DueDate != nil {
		sb.WriteString("  " + t.Due.Render("due "+c.DueDate.Format("Jan 2, 2006")))
	}
	if c.AssignedTo != nil {
		sb.WriteString("  " + t.Avatar.Render(c.AssignedTo.Initial()) + " " + c.AssignedTo.Name)
	}
	sb.WriteString("\n")
	if d.body == "" {
		sb.WriteString(t.Subtitle.Render("No description."))
	} else {
		sb.WriteString(d.body)
	}
	sb.WriteString("\n" + t.Help.Render("esc close"))
	return t.Form.Render(sb.String())
}

// markdown returns the shared renderer, built lazily for the current width.
func (m *model) markdown() *glamour.TermRenderer {
	if m.renderer != nil {
		return m.renderer
	}
	wrap := detailWrap
	if m.width > 0 && m.width-6 < wrap {
		wrap = max(m.width-6, 20)
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.log.Warn().Err(err).Msg("tui: markdown renderer unavailable")
		return nil
	}
	m.renderer = r
	return r
}

// renderMarkdown falls back to the raw text when rendering fails.
func renderMarkdown(r *glamour.TermRenderer, content string) (out string) {
	content = strings.TrimSpace(content)
	if r == nil || content == "" {
		return content
	}
	defer func() {
		if rec := recover(); rec != nil {
			out = content
		}
	}()
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(rendered)
}
