package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/showup-events/showup/internal/connection"
)

// Output formats for list and show commands.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
)

// OutputFormats lists the accepted -o values.
var OutputFormats = []string{FormatTable, FormatYAML, FormatJSON}

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	greenStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	redStyle     = lipgloss.NewStyle().Foreground(colorRed)
)

func checkFormat(format string) error {
	for _, f := range OutputFormats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (values: %s)", format, strings.Join(OutputFormats, ", "))
}

// writeStructured writes v as YAML or JSON.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return checkFormat(format)
	}
}

// connectionView is what list and show print. Secrets never appear.
type connectionView struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Provider    string   `json:"provider" yaml:"provider"`
	Region      string   `json:"region" yaml:"region"`
	AccessKeyID string   `json:"accessKeyId" yaml:"accessKeyId"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Accounts    []string `json:"accounts" yaml:"accounts"`
	Validated   bool     `json:"isValidated" yaml:"isValidated"`
	CreatedAt   string   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string   `json:"updatedAt" yaml:"updatedAt"`
}

const timeLayout = "2006-01-02 15:04"

func viewOf(c connection.Connection) connectionView {
	accounts := c.Accounts
	if accounts == nil {
		accounts = []string{}
	}
	return connectionView{
		ID:          c.ID,
		Name:        c.Name,
		Provider:    c.Provider,
		Region:      c.Credentials.Region,
		AccessKeyID: c.Credentials.AccessKeyID,
		Description: c.Description,
		Accounts:    accounts,
		Validated:   c.IsValidated,
		CreatedAt:   c.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:   c.UpdatedAt.UTC().Format(timeLayout),
	}
}

// renderConnectionTable renders connections as a bordered table.
func renderConnectionTable(list []connection.Connection) string {
	if len(list) == 0 {
		return dimStyle.Render("No AWS connections yet. Create one with 'showup connections create'.")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("ID", "NAME", "REGION", "ACCESS KEY", "ACCOUNTS", "VALIDATED", "CREATED")
	for _, c := range list {
		v := viewOf(c)
		validated := redStyle.Render("no")
		if v.Validated {
			validated = greenStyle.Render("yes")
		}
		t.Row(v.ID, v.Name, v.Region, v.AccessKeyID, fmt.Sprint(len(v.Accounts)), validated, v.CreatedAt)
	}
	return t.Render()
}

// renderConnection renders a single connection as a summary block.
func renderConnection(title string, c connection.Connection) string {
	v := viewOf(c)
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("Connection Details"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  ID:          %s\n", v.ID)
	fmt.Fprintf(&b, "  Name:        %s\n", v.Name)
	fmt.Fprintf(&b, "  Provider:    %s\n", v.Provider)
	fmt.Fprintf(&b, "  Region:      %s\n", v.Region)
	if v.Description != "" {
		fmt.Fprintf(&b, "  Description: %s\n", v.Description)
	}
	fmt.Fprintf(&b, "  Access Key:  %s\n", v.AccessKeyID)
	if len(v.Accounts) > 0 {
		fmt.Fprintf(&b, "  Accounts:    %s\n", strings.Join(v.Accounts, ", "))
	} else {
		b.WriteString("  Accounts:    " + dimStyle.Render("none") + "\n")
	}
	return b.String()
}
