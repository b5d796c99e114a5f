// Package grid places dashboard cards in a fixed 3-column grid.
//
// Every function is a pure calculator: the input slice is never mutated and
// callers receive a new slice they can stage as the dashboard draft.
package grid

import (
	"sort"

	"github.com/pkg/errors"
	"gitlab.com/netops-console/vyos_console_api/model"
)

const (
	// Columns in the dashboard grid
	Columns = 3
	// MaxRows is the number of candidate rows scanned before giving up
	MaxRows = 100
)

var (
	// ErrInvalidSpan is returned for spans outside 1..Columns
	ErrInvalidSpan = errors.New("card span must be between 1 and 3")
	// ErrCapacityExceeded is returned when no free row was found within MaxRows candidates
	ErrCapacityExceeded = errors.New("no free slot found in the dashboard grid")
	// ErrCardNotFound godoc
	ErrCardNotFound = errors.New("card not found")
	// ErrDuplicateCard godoc
	ErrDuplicateCard = errors.New("card already exists")
	// ErrOverlap is returned by Validate when two cards share a cell
	ErrOverlap = errors.New("cards overlap")
	// ErrOutOfBounds is returned by Validate when a card does not fit in the grid
	ErrOutOfBounds = errors.New("card does not fit in the grid")
)

// occupancy maps a row to the set of columns taken in that row
type occupancy map[int]map[int]struct{}

func buildOccupancy(cards []model.DashboardCard) occupancy {
	occupied := occupancy{}
	for _, card := range cards {
		last := card.Column + card.Span - 1
		if last > Columns-1 {
			last = Columns - 1
		}
		for column := card.Column; column <= last; column++ {
			if _, ok := occupied[card.Position]; !ok {
				occupied[card.Position] = map[int]struct{}{}
			}
			occupied[card.Position][column] = struct{}{}
		}
	}
	return occupied
}

func (o occupancy) free(row, column, span int) bool {
	taken, ok := o[row]
	if !ok {
		return true
	}
	for c := column; c < column+span; c++ {
		if _, busy := taken[c]; busy {
			return false
		}
	}
	return true
}

func validSpan(span int) bool {
	return span >= 1 && span <= Columns
}

// ClampColumn moves the column left until a card of the given span fits
func ClampColumn(column, span int) int {
	if column+span-1 > Columns-1 {
		column = Columns - span
	}
	if column < 0 {
		column = 0
	}
	return column
}

// FindFreeSlot finds the first row, starting at startRow, where the columns
// [targetColumn, targetColumn+span-1] are not occupied by any of the given cards.
// The cards must not include the one being placed.
func FindFreeSlot(cards []model.DashboardCard, targetColumn, span, startRow int) (int, int, error) {
	if !validSpan(span) {
		return 0, 0, ErrInvalidSpan
	}
	column := ClampColumn(targetColumn, span)
	if startRow < 0 {
		startRow = 0
	}

	occupied := buildOccupancy(cards)
	for row := startRow; row < startRow+MaxRows; row++ {
		if occupied.free(row, column, span) {
			return column, row, nil
		}
	}
	return 0, 0, ErrCapacityExceeded
}

// FirstFit finds the first free range of span columns scanning rows top to
// bottom and columns left to right.
func FirstFit(cards []model.DashboardCard, span int) (int, int, error) {
	if !validSpan(span) {
		return 0, 0, ErrInvalidSpan
	}
	occupied := buildOccupancy(cards)
	for row := 0; row < MaxRows; row++ {
		for column := 0; column <= Columns-span; column++ {
			if occupied.free(row, column, span) {
				return column, row, nil
			}
		}
	}
	return 0, 0, ErrCapacityExceeded
}

// Index returns the position of the card in the list or -1
func Index(cards []model.DashboardCard, id string) int {
	for i := range cards {
		if cards[i].ID == id {
			return i
		}
	}
	return -1
}

func without(cards []model.DashboardCard, id string) []model.DashboardCard {
	others := make([]model.DashboardCard, 0, len(cards))
	for _, card := range cards {
		if card.ID != id {
			others = append(others, card)
		}
	}
	return others
}

func clone(cards []model.DashboardCard) []model.DashboardCard {
	out := make([]model.DashboardCard, len(cards))
	copy(out, cards)
	return out
}

// Place adds a new card to the grid. A nil targetColumn places the card in
// the first free slot of the grid, otherwise the card goes to the first free
// row of that column.
func Place(cards []model.DashboardCard, card model.DashboardCard, targetColumn *int) ([]model.DashboardCard, model.DashboardCard, error) {
	if Index(cards, card.ID) >= 0 {
		return nil, card, ErrDuplicateCard
	}

	var (
		column, row int
		err         error
	)
	if targetColumn == nil {
		column, row, err = FirstFit(cards, card.Span)
	} else {
		column, row, err = FindFreeSlot(cards, *targetColumn, card.Span, 0)
	}
	if err != nil {
		return nil, card, err
	}

	card.Column = column
	card.Position = row
	return append(clone(cards), card), card, nil
}

// DropTarget is where a dragged card was released
type DropTarget struct {
	// CardID of the card the dragged card was released over
	CardID string
	// Column of the empty column region the card was released over
	Column *int
}

// Drop applies a drag-and-drop of the card movingID. It returns false when
// the drop is a no-op: released over itself, over an unknown card, outside
// of the grid, or when the card ends up in the slot it already had.
func Drop(cards []model.DashboardCard, movingID string, target DropTarget) ([]model.DashboardCard, bool, error) {
	idx := Index(cards, movingID)
	if idx < 0 {
		return cards, false, ErrCardNotFound
	}
	moving := cards[idx]

	var column, row int
	switch {
	case target.CardID != "":
		if target.CardID == movingID {
			return cards, false, nil
		}
		over := Index(cards, target.CardID)
		if over < 0 {
			return cards, false, nil
		}
		column, row = cards[over].Column, cards[over].Position
	case target.Column != nil:
		if *target.Column < 0 || *target.Column >= Columns {
			return cards, false, nil
		}
		column, row = *target.Column, 0
	default:
		return cards, false, nil
	}

	column, row, err := FindFreeSlot(without(cards, movingID), column, moving.Span, row)
	if err != nil {
		return cards, false, err
	}
	if column == moving.Column && row == moving.Position {
		return cards, false, nil
	}

	out := clone(cards)
	out[idx].Column = column
	out[idx].Position = row
	return out, true, nil
}

// Resize changes the span of a card and re-places it from its current slot
func Resize(cards []model.DashboardCard, id string, span int) ([]model.DashboardCard, bool, error) {
	if !validSpan(span) {
		return cards, false, ErrInvalidSpan
	}
	idx := Index(cards, id)
	if idx < 0 {
		return cards, false, ErrCardNotFound
	}
	card := cards[idx]
	if card.Span == span {
		return cards, false, nil
	}

	column, row, err := FindFreeSlot(without(cards, id), card.Column, span, card.Position)
	if err != nil {
		return cards, false, err
	}

	out := clone(cards)
	out[idx].Span = span
	out[idx].Column = column
	out[idx].Position = row
	return out, true, nil
}

// Remove deletes a card from the grid
func Remove(cards []model.DashboardCard, id string) ([]model.DashboardCard, error) {
	if Index(cards, id) < 0 {
		return cards, ErrCardNotFound
	}
	return without(cards, id), nil
}

// Sort orders cards the way they are rendered: by row, then column
func Sort(cards []model.DashboardCard) []model.DashboardCard {
	out := clone(cards)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// Validate checks that every card fits in the grid and no two cards share a cell
func Validate(cards []model.DashboardCard) error {
	seen := map[string]struct{}{}
	cells := map[[2]int]string{}
	for _, card := range cards {
		if _, ok := seen[card.ID]; ok {
			return errors.Wrap(ErrDuplicateCard, card.ID)
		}
		seen[card.ID] = struct{}{}

		if !validSpan(card.Span) {
			return errors.Wrap(ErrInvalidSpan, card.ID)
		}
		if card.Column < 0 || card.Position < 0 || card.Column+card.Span-1 > Columns-1 {
			return errors.Wrap(ErrOutOfBounds, card.ID)
		}
		for column := card.Column; column < card.Column+card.Span; column++ {
			cell := [2]int{card.Position, column}
			if other, ok := cells[cell]; ok {
				return errors.Wrapf(ErrOverlap, "%s and %s", other, card.ID)
			}
			cells[cell] = card.ID
		}
	}
	return nil
}
