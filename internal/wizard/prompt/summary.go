package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/showup-events/showup/internal/connection"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
	labelStyle   = lipgloss.NewStyle().Width(20)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
)

// Summary renders the overview of a draft. The secret is masked.
func Summary(d connection.Draft) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Connection Details") + "\n")
	row(&b, "Name", d.About.Name)
	row(&b, "Provider", d.About.Provider)
	row(&b, "Region", d.About.Region)
	if d.About.Description != "" {
		row(&b, "Description", d.About.Description)
	}

	b.WriteString("\n" + headingStyle.Render("Credentials") + "\n")
	row(&b, "Access Key ID", d.Credentials.AccessKeyID)
	row(&b, "Secret Access Key", strings.Repeat("•", 16))

	b.WriteString("\n" + headingStyle.Render("Selected Accounts") + "\n")
	if len(d.Accounts.Accounts) == 0 {
		b.WriteString(mutedStyle.Render("No accounts selected") + "\n")
	} else {
		b.WriteString(strings.Join(d.Accounts.Accounts, ", ") + "\n")
	}

	b.WriteString("\n" + headingStyle.Render("Validation") + "\n")
	switch {
	case d.Validation.Valid():
		b.WriteString(okStyle.Render("Credentials validated") + "\n")
		row(&b, "Container ID", d.Validation.ContainerID)
	case d.Validation.IsValid != nil:
		b.WriteString(errStyle.Render("Credential validation failed") + "\n")
	default:
		b.WriteString(mutedStyle.Render("Not validated") + "\n")
	}

	return b.String()
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s%s\n", labelStyle.Render(label+":"), value)
}
