package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette helpers. Colors are adaptive so the dashboard stays readable on
// light and dark terminal backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted          lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg     lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg     lipgloss.TerminalColor = ac("235", "255")
	colorSelectedBorder lipgloss.TerminalColor = ac("232", "255")
	colorCardBorder     lipgloss.TerminalColor = ac("250", "243")
	colorSurfaceFg      lipgloss.TerminalColor = ac("235", "252")
	colorControlBg      lipgloss.TerminalColor = ac("252", "235")
	colorAccent         lipgloss.TerminalColor = ac("27", "62")
	colorCardMetaFg     lipgloss.TerminalColor = ac("238", "250")
	colorErrorFg        lipgloss.TerminalColor = ac("160", "203")

	colorPublished lipgloss.TerminalColor = ac("28", "42")
	colorDraft     lipgloss.TerminalColor = ac("130", "214")
	colorAI        lipgloss.TerminalColor = ac("92", "141")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorErrorFg).Bold(true)
}

func styleChip() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorCardMetaFg).Background(colorControlBg).Padding(0, 1)
}

func statusBadge(status string) string {
	c := colorDraft
	if status == "published" {
		c = colorPublished
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(status)
}

func aiBadge() string {
	return lipgloss.NewStyle().Foreground(colorAI).Render("✦ AI")
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts termenv's detection,
// upgrading to 256 colors when TERM advertises it.
func applyColorProfilePreference() {
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color") && profile != termenv.TrueColor:
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference lets REPORTDESK_TUI_THEME=light|dark override background detection,
// then falls back to the COLORFGBG heuristic ("fg;bg").
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("REPORTDESK_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
