package utils

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// MessageType defines the type of message box to render.
type MessageType int

const (
	// InfoMessage represents an informational message.
	InfoMessage MessageType = iota
	// SuccessMessage represents a run that completed every task.
	SuccessMessage
	// WarningMessage represents a run that left tasks blocked.
	WarningMessage
	// ErrorMessage represents a run with failed tasks.
	ErrorMessage
	// QuestionMessage represents a confirmation prompt.
	QuestionMessage
)

const (
	infoPrefix     = "ℹ"
	successPrefix  = "✓"
	warningPrefix  = "⚠"
	errorPrefix    = "✗"
	questionPrefix = "?"
)

const (
	topLeft     = "╭"
	topRight    = "╮"
	bottomLeft  = "╰"
	bottomRight = "╯"
	horizontal  = "─"
	vertical    = "│"

	minBoxWidth  = 20
	boxMargin    = 8
	contentInset = 6
)

var (
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
)

// Box is a builder for creating formatted message boxes.
type Box struct {
	messageType MessageType
	title       string
	content     []string
	maxWidth    int
}

// NewBox creates a new message box sized to the terminal.
func NewBox(messageType MessageType, title string) *Box {
	return &Box{
		messageType: messageType,
		title:       title,
		maxWidth:    getTerminalWidth() - boxMargin,
	}
}

// WithMaxWidth overrides the terminal derived width.
func (b *Box) WithMaxWidth(width int) *Box {
	if width < minBoxWidth {
		width = minBoxWidth
	}
	b.maxWidth = width
	return b
}

// AddLine adds a line of text to the message box content.
func (b *Box) AddLine(text string) *Box {
	b.content = append(b.content, text)
	return b
}

// AddBullet adds a bulleted line to the message box content.
func (b *Box) AddBullet(text string) *Box {
	b.content = append(b.content, "• "+text)
	return b
}

// AddKeyValue adds a "key: value" line to the message box content.
func (b *Box) AddKeyValue(key string, value interface{}) *Box {
	b.content = append(b.content, fmt.Sprintf("%s: %v", key, value))
	return b
}

// Render builds and returns the formatted message box as a string.
func (b *Box) Render() string {
	style, prefix := b.getStyleAndPrefix()

	lines := append([]string{b.title}, b.content...)
	return renderStyledBox(lines, style, prefix, b.maxWidth)
}

func (b *Box) getStyleAndPrefix() (lipgloss.Style, string) {
	switch b.messageType {
	case SuccessMessage:
		return successStyle, successPrefix
	case WarningMessage:
		return warningStyle, warningPrefix
	case ErrorMessage:
		return errorStyle, errorPrefix
	case QuestionMessage:
		return questionStyle, questionPrefix
	default:
		return infoStyle, infoPrefix
	}
}

func renderStyledBox(lines []string, style lipgloss.Style, prefix string, maxWidth int) string {
	if maxWidth < minBoxWidth {
		maxWidth = minBoxWidth
	}
	contentWidth := maxWidth - contentInset

	var wrapped []string
	for _, line := range lines {
		if utf8.RuneCountInString(line) <= contentWidth {
			wrapped = append(wrapped, line)
		} else {
			wrapped = append(wrapped, wrapText(line, contentWidth)...)
		}
	}

	boxWidth := contentInset
	for _, line := range wrapped {
		if n := utf8.RuneCountInString(line) + contentInset; n > boxWidth {
			boxWidth = n
		}
	}

	var sb strings.Builder
	sb.WriteString(style.Render(topLeft+strings.Repeat(horizontal, boxWidth-2)+topRight) + "\n")

	first := wrapped[0]
	padding := max(boxWidth-utf8.RuneCountInString(first)-5-utf8.RuneCountInString(prefix), 0)
	sb.WriteString(fmt.Sprintf("%s %s %s%s %s\n",
		style.Render(vertical),
		style.Bold(true).Render(prefix),
		style.Bold(false).Render(first),
		strings.Repeat(" ", padding),
		style.Render(vertical)))

	for _, line := range wrapped[1:] {
		padding := max(boxWidth-utf8.RuneCountInString(line)-contentInset, 0)
		sb.WriteString(fmt.Sprintf("%s   %s%s %s\n",
			style.Render(vertical),
			line,
			strings.Repeat(" ", padding),
			style.Render(vertical)))
	}

	sb.WriteString(style.Render(bottomLeft + strings.Repeat(horizontal, boxWidth-2) + bottomRight))
	return sb.String()
}

func Success(title string, lines ...string) string {
	return render(SuccessMessage, title, lines)
}

func Warning(title string, lines ...string) string {
	return render(WarningMessage, title, lines)
}

func Error(title string, lines ...string) string {
	return render(ErrorMessage, title, lines)
}

func render(messageType MessageType, title string, lines []string) string {
	box := NewBox(messageType, title)
	for _, line := range lines {
		box.AddLine(line)
	}
	return box.Render()
}

// getTerminalWidth returns the terminal width or defaults to 80 if unable to detect.
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// wrapText wraps text to fit within the specified maximum width.
func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	currentWidth := utf8.RuneCountInString(current)

	for _, word := range words[1:] {
		wordWidth := utf8.RuneCountInString(word)
		if currentWidth+wordWidth+1 <= maxWidth {
			current += " " + word
			currentWidth += wordWidth + 1
			continue
		}
		lines = append(lines, current)
		current = word
		currentWidth = wordWidth
	}
	return append(lines, current)
}
