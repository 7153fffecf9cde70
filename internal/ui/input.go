package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// InputHandler reads line-based user input
type InputHandler struct {
	reader *bufio.Reader
}

// NewInputHandler creates an input handler over stdin
func NewInputHandler() *InputHandler {
	return &InputHandler{
		reader: bufio.NewReader(os.Stdin),
	}
}

// NewInputHandlerFrom creates an input handler over an arbitrary reader (tests)
func NewInputHandlerFrom(r io.Reader) *InputHandler {
	return &InputHandler{
		reader: bufio.NewReader(r),
	}
}

// ReadLine prints the prompt and reads a single trimmed line.
// Returns io.EOF when the input stream is closed.
func (h *InputHandler) ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := h.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Clear clears the terminal screen
func (h *InputHandler) Clear() {
	fmt.Print("\033[H\033[2J")
}
