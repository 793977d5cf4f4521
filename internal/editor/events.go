package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rifat0153/cleannotes/internal/notes"
)

// ErrUnknownEvent indicates that an event name could not be mapped to an Event.
var ErrUnknownEvent = errors.New("editor: unknown event")

// Event is a user action dispatched to a Session.
type Event interface {
	editorEvent()
}

type EnteredTitle struct {
	Value string
}

type ChangeTitleFocus struct {
	Focused bool
}

type EnteredContent struct {
	Value string
}

type ChangeContentFocus struct {
	Focused bool
}

type ChangeColor struct {
	Color notes.Color
}

type SaveNote struct{}

func (EnteredTitle) editorEvent()       {}
func (ChangeTitleFocus) editorEvent()   {}
func (EnteredContent) editorEvent()     {}
func (ChangeContentFocus) editorEvent() {}
func (ChangeColor) editorEvent()        {}
func (SaveNote) editorEvent()           {}

// Transport names for events.
const (
	EventEnteredTitle       = "entered_title"
	EventChangeTitleFocus   = "change_title_focus"
	EventEnteredContent     = "entered_content"
	EventChangeContentFocus = "change_content_focus"
	EventChangeColor        = "change_color"
	EventSaveNote           = "save_note"
)

// EventPayload carries the arguments of an event received over a transport.
type EventPayload struct {
	Value   string `json:"value"`
	Focused bool   `json:"focused"`
	Color   string `json:"color"`
}

// ParseEvent builds an Event from its transport name and payload.
func ParseEvent(kind string, payload EventPayload) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case EventEnteredTitle:
		return EnteredTitle{Value: payload.Value}, nil
	case EventChangeTitleFocus:
		return ChangeTitleFocus{Focused: payload.Focused}, nil
	case EventEnteredContent:
		return EnteredContent{Value: payload.Value}, nil
	case EventChangeContentFocus:
		return ChangeContentFocus{Focused: payload.Focused}, nil
	case EventChangeColor:
		color, err := notes.ParseColor(payload.Color)
		if err != nil {
			return nil, err
		}
		return ChangeColor{Color: color}, nil
	case EventSaveNote:
		return SaveNote{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}
}

// UiEventKind distinguishes terminal outcomes of a save attempt.
type UiEventKind string

const (
	UiEventSaved            UiEventKind = "saved"
	UiEventValidationFailed UiEventKind = "validation_failed"
)

// UiEvent is a one-shot signal for the screen. Message is set for validation failures,
// NoteID for successful saves.
type UiEvent struct {
	Kind    UiEventKind  `json:"kind"`
	Message string       `json:"message,omitempty"`
	NoteID  notes.NoteID `json:"note_id,omitempty"`
}
