package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"accsetup/internal/setup"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	changedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("4")).
			Padding(0, 1)
)

// renderSetup draws one card per section. Paths in changed are highlighted.
func renderSetup(s setup.Setup, lang string, changed map[string]bool) string {
	var cards []string
	for _, sec := range setup.Sections(s) {
		if sec.Name == "summary" {
			continue
		}
		cards = append(cards, renderCard(sec, lang, changed))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func renderCard(sec setup.Section, lang string, changed map[string]bool) string {
	lines := []string{headingStyle.Render(setup.SectionLabel(sec.Name, lang))}
	for _, f := range sec.Fields {
		value := f.Value
		if u := setup.Unit(f.Path); u != "" {
			value += " " + u
		}
		line := fmt.Sprintf("%s: %s", setup.FieldLabel(f.Path, lang), value)
		if changed[f.Path] {
			line = changedStyle.Render("* " + line)
		}
		lines = append(lines, line)
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// renderSummary renders the model's summary as markdown, falling back to
// the plain text when the renderer cannot be built.
func renderSummary(summary string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return summary
	}
	out, err := r.Render(summary)
	if err != nil {
		return summary
	}
	return out
}

func renderChanges(changes []setup.Change, lang string) string {
	if len(changes) == 0 {
		return dimStyle.Render(noChanges.in(lang))
	}
	var b strings.Builder
	for _, c := range changes {
		fmt.Fprintf(&b, "  %s: %s -> %s\n", setup.FieldLabel(c.Path, lang), c.From, c.To)
	}
	return strings.TrimRight(b.String(), "\n")
}

func changedPaths(changes []setup.Change) map[string]bool {
	m := make(map[string]bool, len(changes))
	for _, c := range changes {
		m[c.Path] = true
	}
	return m
}

type text struct{ hu, en string }

func (t text) in(lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return t.en
	}
	return t.hu
}

var (
	noChanges     = text{hu: "Nem változott egy érték sem.", en: "No values changed."}
	titleCar      = text{hu: "Autó", en: "Car"}
	titleTrack    = text{hu: "Pálya", en: "Track"}
	titleStyle    = text{hu: "Vezetési stílus", en: "Driving style"}
	titleFeedback = text{hu: "Visszajelzés (üresen hagyva kilép)", en: "Feedback (leave empty to quit)"}
	msgGenerating = text{hu: "Setup generálása...", en: "Generating setup..."}
	msgRefining   = text{hu: "Setup finomhangolása...", en: "Fine-tuning setup..."}
	headChanges   = text{hu: "Változások", en: "Changes"}
)
