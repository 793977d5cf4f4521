package editor

import (
	"strings"

	"github.com/rifat0153/cleannotes/internal/notes"
)

const (
	TitleHint   = "Enter title..."
	ContentHint = "Enter some content..."
)

// TextFieldState is an editable text value plus whether its placeholder is showing.
type TextFieldState struct {
	Text        string `json:"text"`
	Hint        string `json:"hint"`
	HintVisible bool   `json:"hint_visible"`
}

func newTextField(hint string) TextFieldState {
	return TextFieldState{Hint: hint, HintVisible: true}
}

// HintVisible reports whether a field shows its placeholder: only when unfocused and blank.
func HintVisible(focused bool, text string) bool {
	return !focused && strings.TrimSpace(text) == ""
}

// State is a snapshot of an edit session.
type State struct {
	Title   TextFieldState `json:"title"`
	Content TextFieldState `json:"content"`
	Color   notes.Color    `json:"color"`
	// NoteID is zero until the session is bound to a stored note.
	NoteID notes.NoteID `json:"note_id"`
}
