package testing

import (
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyPress returns the message for typing key as runes, e.g. "q" or "G".
func KeyPress(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// KeyDown is the down arrow.
func KeyDown() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyDown} }

// KeyUp is the up arrow.
func KeyUp() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyUp} }

// KeyLeft is the left arrow.
func KeyLeft() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyLeft} }

// KeyRight is the right arrow.
func KeyRight() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRight} }

// KeyEnter is enter.
func KeyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

// KeyEsc is escape.
func KeyEsc() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEsc} }

// KeyTab is tab.
func KeyTab() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyTab} }

// KeyShiftTab is shift+tab.
func KeyShiftTab() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyShiftTab} }

// KeyBackspace is backspace.
func KeyBackspace() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyBackspace} }

// KeyCtrl returns the message for ctrl plus a single letter.
func KeyCtrl(letter string) tea.KeyMsg {
	r, size := utf8.DecodeRuneInString(letter)
	r = unicode.ToLower(r)
	if size != len(letter) || r < 'a' || r > 'z' {
		panic("KeyCtrl requires a single letter, got " + letter)
	}
	// Control codes run from ctrl+a (1) to ctrl+z (26).
	return tea.KeyMsg{Type: tea.KeyCtrlA + tea.KeyType(r-'a')}
}

// WindowSize returns a terminal resize message.
func WindowSize(width, height int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: width, Height: height}
}

// Type returns one key message per rune of text, as a user typing it.
func Type(text string) []tea.Msg {
	msgs := make([]tea.Msg, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

// Erase returns n backspace messages.
func Erase(n int) []tea.Msg {
	msgs := make([]tea.Msg, n)
	for i := range msgs {
		msgs[i] = KeyBackspace()
	}
	return msgs
}
