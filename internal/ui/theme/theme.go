package theme

import "charm.land/lipgloss/v2"

// Palette. The blue/amber pair follows the school-book look of the word
// lists; arcade colours are reserved for the home and course menus.
var (
	Primary   = lipgloss.Color("#3B82F6")
	Secondary = lipgloss.Color("#0EA5A4")
	Accent    = lipgloss.Color("#FBBF24")
	Success   = lipgloss.Color("#16A34A")
	Error     = lipgloss.Color("#E11D48")

	Text    = lipgloss.Color("#F1F5F9")
	TextDim = lipgloss.Color("#8B9BB4")
	BgDark  = lipgloss.Color("#0B1220")
	BgCard  = lipgloss.Color("#182235")
	Border  = lipgloss.Color("#2E3B52")

	ArcadeYellow = lipgloss.Color("#FDE047")
	ArcadeCyan   = lipgloss.Color("#67E8F9")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(Primary).Align(lipgloss.Center)
	Body  = lipgloss.NewStyle().Foreground(Text)
	Hint  = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	// Emphasis renders the **word** spans of a prompt.
	Emphasis = lipgloss.NewStyle().Foreground(ArcadeYellow).Bold(true)
)

// Answer and selection states.
var (
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Correct    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect  = lipgloss.NewStyle().Foreground(Error).Bold(true)
)
