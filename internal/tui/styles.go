package tui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
const (
	ColorOK       = lipgloss.Color("42")
	ColorWarning  = lipgloss.Color("214")
	ColorCritical = lipgloss.Color("196")
	ColorInfo     = lipgloss.Color("39")
	ColorSubtle   = lipgloss.Color("241")
	ColorBorder   = lipgloss.Color("62")
)

// Score bands used to color a predicted score.
const (
	GoodScoreThreshold = 80.0
	FairScoreThreshold = 50.0
)

//nolint:gochecknoglobals // Shared lipgloss styles are package-level by convention.
var (
	HeaderStyle        = lipgloss.NewStyle().Bold(true).Foreground(ColorInfo)
	LabelStyle         = lipgloss.NewStyle().Bold(true).Width(26)
	ValueStyle         = lipgloss.NewStyle()
	SubtleStyle        = lipgloss.NewStyle().Foreground(ColorSubtle)
	OKStyle            = lipgloss.NewStyle().Bold(true).Foreground(ColorOK)
	WarningStyle       = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
	CriticalStyle      = lipgloss.NewStyle().Bold(true).Foreground(ColorCritical)
	InfoStyle          = lipgloss.NewStyle().Foreground(ColorInfo)
	ErrorStyle         = lipgloss.NewStyle().Foreground(ColorCritical)
	FocusedStyle       = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
	BoxStyle           = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorder).Padding(0, 1)
	TableHeaderStyle   = lipgloss.NewStyle().Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(ColorBorder)
	TableSelectedStyle = lipgloss.NewStyle().Foreground(ColorInfo)
)

// ScoreStyle picks the style for a score by band.
func ScoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= GoodScoreThreshold:
		return OKStyle
	case score >= FairScoreThreshold:
		return WarningStyle
	default:
		return CriticalStyle
	}
}

// RenderScore formats a score as "82.5/100" in its band color.
func RenderScore(score float64) string {
	return ScoreStyle(score).Render(strconv.FormatFloat(score, 'f', -1, 64) + "/100")
}

// RenderLoadingIndicator is the fallback shown while a prediction runs.
func RenderLoadingIndicator() string {
	return InfoStyle.Render("Calculating your energy efficiency score...")
}
