package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/pricebook/internal/alert"
)

// alertMaxWidth bounds the modal's text width.
const alertMaxWidth = 60

// renderAlert centers the active alert over the screen.
func renderAlert(a *alert.Alert, width, height int) string {
	w := alertMaxWidth
	if w > width-8 {
		w = width - 8
	}
	if w < 20 {
		w = 20
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		AlertTitle.Render(a.DisplayTitle()),
		"",
		lipgloss.NewStyle().Width(w).Render(a.Message),
		"",
		MutedText.Render("code "+a.DisplayCode()+"  ·  press any key to dismiss"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, AlertBox.Render(body))
}
