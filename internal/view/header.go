package view

import (
	"fmt"
	"strings"

	"github.com/gosuda/taskflow/internal/domain"
)

const maxAvatars = 3

// Members renders the first few member initials followed by "+N" for the
// rest.
func Members(t Theme, members []domain.UserRef) string {
	parts := make([]string, 0, maxAvatars+1)
	for i, m := range members {
		if i == maxAvatars {
			parts = append(parts, t.Subtitle.Render(fmt.Sprintf("+%d", len(members)-maxAvatars)))
			break
		}
		parts = append(parts, t.Avatar.Render(m.Initial()))
	}
	return strings.Join(parts, " ")
}

// BoardHeader renders the title line of an open board.
func BoardHeader(t Theme, b *domain.Board) string {
	line := t.Title.Render(b.Title)
	if members := Members(t, b.Members); members != "" {
		line += "  " + members
	}
	if b.Description != "" {
		line += "\n" + t.Subtitle.Render(b.Description)
	}
	return line
}

// BoardRow renders one dashboard entry. The delete hint only shows for
// boards the user owns.
func BoardRow(t Theme, b *domain.Board, selected, canDelete bool) string {
	var sb strings.Builder
	sb.WriteString(t.CardTitle.Render(b.Title))
	if canDelete {
		sb.WriteString(" " + t.Delete.Render("[x]"))
	}
	if b.Description != "" {
		sb.WriteString("\n" + t.Description.Render(firstLine(b.Description)))
	}
	sb.WriteString("\n" + t.Subtitle.Render(fmt.Sprintf("%s · %s", memberCount(len(b.Members)), b.CreatedAt.Format("Jan 2, 2006"))))

	if selected {
		return t.RowSelected.Render(sb.String())
	}
	return t.Row.Render(sb.String())
}

func memberCount(n int) string {
	if n == 1 {
		return "1 member"
	}
	return fmt.Sprintf("%d members", n)
}
