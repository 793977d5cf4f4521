package notes

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidOrder indicates an unknown ordering field or direction.
var ErrInvalidOrder = errors.New("notes: invalid order")

// OrderField selects the attribute a note list is sorted by.
type OrderField string

const (
	OrderByDate  OrderField = "date"
	OrderByTitle OrderField = "title"
	OrderByColor OrderField = "color"
)

// OrderDirection selects ascending or descending order.
type OrderDirection string

const (
	Ascending  OrderDirection = "asc"
	Descending OrderDirection = "desc"
)

// NoteOrder is the ordering a list screen asks for.
type NoteOrder struct {
	Field     OrderField
	Direction OrderDirection
}

// DefaultNoteOrder shows the most recently saved notes first.
var DefaultNoteOrder = NoteOrder{Field: OrderByDate, Direction: Descending}

// ParseNoteOrder resolves user input; empty values fall back to DefaultNoteOrder.
func ParseNoteOrder(field, direction string) (NoteOrder, error) {
	order := DefaultNoteOrder

	switch OrderField(strings.ToLower(strings.TrimSpace(field))) {
	case "":
	case OrderByDate:
		order.Field = OrderByDate
	case OrderByTitle:
		order.Field = OrderByTitle
	case OrderByColor:
		order.Field = OrderByColor
	default:
		return NoteOrder{}, fmt.Errorf("%w: field %q", ErrInvalidOrder, field)
	}

	switch OrderDirection(strings.ToLower(strings.TrimSpace(direction))) {
	case "":
	case Ascending:
		order.Direction = Ascending
	case Descending:
		order.Direction = Descending
	default:
		return NoteOrder{}, fmt.Errorf("%w: direction %q", ErrInvalidOrder, direction)
	}

	return order, nil
}

// SortNotes orders notes in place. Ties keep repository order.
func SortNotes(notes []Note, order NoteOrder) {
	compare := func(a, b Note) int {
		switch order.Field {
		case OrderByTitle:
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case OrderByColor:
			return cmp.Compare(a.Color, b.Color)
		default:
			return cmp.Compare(a.Timestamp, b.Timestamp)
		}
	}
	slices.SortStableFunc(notes, func(a, b Note) int {
		if order.Direction == Ascending {
			return compare(a, b)
		}
		return compare(b, a)
	})
}
