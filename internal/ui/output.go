package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdul-hamid-achik/ask/internal/config"
)

// OutputHandler handles console output with themed colors
type OutputHandler struct {
	styles    Styles
	useColors bool
}

// NewOutputHandler creates a new output handler for the given theme
func NewOutputHandler(theme config.Theme) *OutputHandler {
	// Check if output is a terminal
	useColors := true
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		useColors = false
	}

	// Check NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		useColors = false
	}

	return &OutputHandler{
		styles:    StylesFor(theme),
		useColors: useColors,
	}
}

func (o *OutputHandler) styled(s lipgloss.Style, text string) string {
	if !o.useColors {
		return text
	}
	return s.Render(text)
}

// PromptText renders text in the prompt style without printing it,
// for embedding in a readline prompt.
func (o *OutputHandler) PromptText(text string) string {
	return o.styled(o.styles.Prompt, text)
}

// CommandText renders a shell command in the command style.
func (o *OutputHandler) CommandText(text string) string {
	return o.styled(o.styles.Command, text)
}

// Helper prints a hint or conversational line
func (o *OutputHandler) Helper(text string) {
	fmt.Println(o.styled(o.styles.Helper, text))
}

// Dim prints de-emphasized text
func (o *OutputHandler) Dim(text string) {
	fmt.Println(o.styled(o.styles.Dim, text))
}

// Text prints plain text with a trailing newline
func (o *OutputHandler) Text(text string) {
	fmt.Println(text)
}

// Raw prints text exactly as captured, with no styling or added newline
func (o *OutputHandler) Raw(text string) {
	fmt.Print(text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		fmt.Println()
	}
}

// RawErr prints captured stderr output to the stderr stream
func (o *OutputHandler) RawErr(text string) {
	fmt.Fprint(os.Stderr, text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(os.Stderr)
	}
}

// RunMarker echoes the command about to run: "run> <command>"
func (o *OutputHandler) RunMarker(command string) {
	fmt.Printf("%s %s\n", o.styled(o.styles.Prompt, "run>"), o.styled(o.styles.Command, command))
}

// ConfirmMarker prints the confirmation question for a candidate command
func (o *OutputHandler) ConfirmMarker(command string) {
	fmt.Printf("%s %s?  [Y/n/s/i]  ", o.styled(o.styles.Prompt, "run>"), o.styled(o.styles.Command, command))
}

// Error prints an error message to stderr
func (o *OutputHandler) Error(err error) {
	fmt.Fprintln(os.Stderr, o.styled(o.styles.Error, "Error: ")+err.Error())
}

// Warning prints a warning message to stderr
func (o *OutputHandler) Warning(msg string) {
	fmt.Fprintln(os.Stderr, o.styled(o.styles.Warning, "Warning: ")+msg)
}

// Blank prints an empty line
func (o *OutputHandler) Blank() {
	fmt.Println()
}
