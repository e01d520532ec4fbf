// Package view renders board entities for the terminal. Units hold no board
// state: they take a value, render it and report user intents through
// callbacks.
package view

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gosuda/taskflow/internal/domain"
)

var (
	colorAccent  = lipgloss.Color("63")
	colorMuted   = lipgloss.Color("245")
	colorDanger  = lipgloss.Color("#e53935")
	colorLow     = lipgloss.Color("#8BC34A")
	colorMedium  = lipgloss.Color("#FFC107")
	colorHigh    = lipgloss.Color("#e53935")
	colorAvatar  = lipgloss.Color("#2196F3")
	colorOverlay = lipgloss.Color("237")
)

type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style
	Error    lipgloss.Style

	Card         lipgloss.Style
	CardFocused  lipgloss.Style
	CardDragging lipgloss.Style
	CardTitle    lipgloss.Style
	Description  lipgloss.Style
	Due          lipgloss.Style
	Avatar       lipgloss.Style
	Delete       lipgloss.Style

	List        lipgloss.Style
	ListFocused lipgloss.Style
	ListOver    lipgloss.Style
	ListTitle   lipgloss.Style
	Count       lipgloss.Style
	AddCard     lipgloss.Style
	Form        lipgloss.Style

	Row         lipgloss.Style
	RowSelected lipgloss.Style

	low, medium, high lipgloss.Style
}

func DefaultTheme() Theme {
	badge := lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("0"))
	card := lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(colorMuted)
	list := lipgloss.NewStyle().
		Padding(0, 1).
		Width(32).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted)

	return Theme{
		Title:    lipgloss.NewStyle().Bold(true),
		Subtitle: lipgloss.NewStyle().Faint(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Error:    lipgloss.NewStyle().Foreground(colorDanger),

		Card:         card,
		CardFocused:  card.BorderForeground(colorAccent).Bold(true),
		CardDragging: card.Faint(true).Background(colorOverlay),
		CardTitle:    lipgloss.NewStyle().Bold(true),
		Description:  lipgloss.NewStyle().Foreground(colorMuted),
		Due:          lipgloss.NewStyle().Foreground(colorMuted),
		Avatar:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(colorAvatar).Padding(0, 1),
		Delete:       lipgloss.NewStyle().Foreground(colorDanger),

		List:        list,
		ListFocused: list.BorderForeground(colorAccent),
		ListOver:    list.BorderStyle(lipgloss.DoubleBorder()).BorderForeground(colorAccent),
		ListTitle:   lipgloss.NewStyle().Bold(true),
		Count:       lipgloss.NewStyle().Faint(true),
		AddCard:     lipgloss.NewStyle().Faint(true),
		Form:        lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(colorAccent).Padding(0, 1),

		Row:         lipgloss.NewStyle().PaddingLeft(2),
		RowSelected: lipgloss.NewStyle().PaddingLeft(1).BorderStyle(lipgloss.ThickBorder()).BorderLeft(true).BorderForeground(colorAccent),

		low:    badge.Background(colorLow),
		medium: badge.Background(colorMedium),
		high:   badge.Background(colorHigh),
	}
}

// Priority returns the badge style of p.
func (t Theme) Priority(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityLow:
		return t.low
	case domain.PriorityHigh:
		return t.high
	default:
		return t.medium
	}
}

// PriorityBorder is the card edge color of p.
func PriorityBorder(p domain.Priority) lipgloss.Color {
	switch p {
	case domain.PriorityLow:
		return colorLow
	case domain.PriorityHigh:
		return colorHigh
	default:
		return colorMedium
	}
}
