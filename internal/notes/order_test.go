package notes

import (
	"errors"
	"testing"
)

func TestParseNoteOrder(t *testing.T) {
	testCases := []struct {
		name      string
		field     string
		direction string
		want      NoteOrder
		wantErr   bool
	}{
		{name: "defaults", want: DefaultNoteOrder},
		{name: "title-asc", field: "title", direction: "asc", want: NoteOrder{Field: OrderByTitle, Direction: Ascending}},
		{name: "color-only", field: "COLOR", want: NoteOrder{Field: OrderByColor, Direction: Descending}},
		{name: "bad-field", field: "size", wantErr: true},
		{name: "bad-direction", direction: "sideways", wantErr: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			order, err := ParseNoteOrder(testCase.field, testCase.direction)
			if testCase.wantErr {
				if !errors.Is(err, ErrInvalidOrder) {
					t.Fatalf("expected ErrInvalidOrder, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if order != testCase.want {
				t.Fatalf("unexpected order %#v", order)
			}
		})
	}
}

func TestSortNotes(t *testing.T) {
	input := []Note{
		{ID: 1, Title: "beta", Timestamp: 30, Color: Violet},
		{ID: 2, Title: "Alpha", Timestamp: 10, Color: RedOrange},
		{ID: 3, Title: "gamma", Timestamp: 20, Color: BabyBlue},
	}

	testCases := []struct {
		name  string
		order NoteOrder
		want  []NoteID
	}{
		{name: "date-desc", order: DefaultNoteOrder, want: []NoteID{1, 3, 2}},
		{name: "date-asc", order: NoteOrder{Field: OrderByDate, Direction: Ascending}, want: []NoteID{2, 3, 1}},
		{name: "title-asc", order: NoteOrder{Field: OrderByTitle, Direction: Ascending}, want: []NoteID{2, 1, 3}},
		{name: "color-desc", order: NoteOrder{Field: OrderByColor, Direction: Descending}, want: []NoteID{2, 1, 3}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			sorted := append([]Note(nil), input...)
			SortNotes(sorted, testCase.order)
			for index, id := range testCase.want {
				if sorted[index].ID != id {
					t.Fatalf("position %d: expected note %d, got %d", index, id, sorted[index].ID)
				}
			}
		})
	}
}
