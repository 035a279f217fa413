package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/pokertable/internal/cards"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	BlackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	FaceDownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	ActorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)
)

// RenderCard colours a card by suit; face-down cards are dimmed.
func RenderCard(c cards.Card) string {
	switch {
	case !c.Valid():
		return FaceDownStyle.Render(c.Symbol())
	case c.IsRed():
		return RedCardStyle.Render(c.Symbol())
	default:
		return BlackCardStyle.Render(c.Symbol())
	}
}

// RenderCards renders a card list, or a dash when empty.
func RenderCards(cs cards.Cards) string {
	if len(cs) == 0 {
		return InfoStyle.Render("-")
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = RenderCard(c)
	}
	return strings.Join(parts, " ")
}

// RenderPots joins the main pot and side pots, e.g. "120 + 40".
func RenderPots(pots []int) string {
	if len(pots) == 0 {
		return "0"
	}
	parts := make([]string, len(pots))
	for i, p := range pots {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, " + ")
}
