package grid

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"gitlab.com/netops-console/vyos_console_api/model"
)

func card(id string, column, row, span int) model.DashboardCard {
	return model.DashboardCard{ID: id, Column: column, Position: row, Span: span}
}

func intp(v int) *int {
	return &v
}

func TestFindFreeSlot(t *testing.T) {
	Convey("Given an empty grid", t, func() {
		Convey("a card is placed at the requested column on the start row", func() {
			column, row, err := FindFreeSlot(nil, 1, 1, 0)
			So(err, ShouldBeNil)
			So(column, ShouldEqual, 1)
			So(row, ShouldEqual, 0)
		})

		Convey("a column that would overflow the grid is clamped", func() {
			column, _, err := FindFreeSlot(nil, 2, 2, 0)
			So(err, ShouldBeNil)
			So(column, ShouldEqual, 1)

			column, _, err = FindFreeSlot(nil, 2, 3, 0)
			So(err, ShouldBeNil)
			So(column, ShouldEqual, 0)
		})

		Convey("an invalid span is rejected", func() {
			_, _, err := FindFreeSlot(nil, 0, 0, 0)
			So(err, ShouldEqual, ErrInvalidSpan)
			_, _, err = FindFreeSlot(nil, 0, 4, 0)
			So(err, ShouldEqual, ErrInvalidSpan)
		})
	})

	Convey("Given a grid with a wide card on the first row", t, func() {
		cards := []model.DashboardCard{card("a", 0, 0, 2)}

		Convey("a card targeting a covered column goes to the next row", func() {
			column, row, err := FindFreeSlot(cards, 1, 1, 0)
			So(err, ShouldBeNil)
			So(column, ShouldEqual, 1)
			So(row, ShouldEqual, 1)
		})

		Convey("a card targeting the free column stays on the row", func() {
			column, row, err := FindFreeSlot(cards, 2, 1, 0)
			So(err, ShouldBeNil)
			So(column, ShouldEqual, 2)
			So(row, ShouldEqual, 0)
		})

		Convey("the scan starts from the given row", func() {
			_, row, err := FindFreeSlot(cards, 2, 1, 5)
			So(err, ShouldBeNil)
			So(row, ShouldEqual, 5)
		})
	})

	Convey("Given a column filled for more rows than the scan limit", t, func() {
		cards := make([]model.DashboardCard, 0, MaxRows)
		for row := 0; row < MaxRows; row++ {
			cards = append(cards, card(string(rune('a'+row%26))+"-"+string(rune('0'+row/26)), 0, row, 3))
		}

		Convey("the placement fails with a capacity error", func() {
			_, _, err := FindFreeSlot(cards, 0, 1, 0)
			So(err, ShouldEqual, ErrCapacityExceeded)
		})
	})
}

func TestPlace(t *testing.T) {
	Convey("Given a dashboard with A at column 0 spanning 2 columns", t, func() {
		cards := []model.DashboardCard{card("A", 0, 0, 2)}

		Convey("adding B without a target column fills column 2 of row 0", func() {
			cards, b, err := Place(cards, model.DashboardCard{ID: "B", Span: 1}, nil)
			So(err, ShouldBeNil)
			So(b.Column, ShouldEqual, 2)
			So(b.Position, ShouldEqual, 0)
			So(len(cards), ShouldEqual, 2)

			Convey("adding C targeting column 0 goes to row 1", func() {
				cards, c, err := Place(cards, model.DashboardCard{ID: "C", Span: 1}, intp(0))
				So(err, ShouldBeNil)
				So(c.Column, ShouldEqual, 0)
				So(c.Position, ShouldEqual, 1)
				So(Validate(cards), ShouldBeNil)
			})
		})

		Convey("adding a card with an existing id fails", func() {
			_, _, err := Place(cards, model.DashboardCard{ID: "A", Span: 1}, nil)
			So(err, ShouldEqual, ErrDuplicateCard)
		})

		Convey("the input slice is left untouched", func() {
			_, _, _ = Place(cards, model.DashboardCard{ID: "B", Span: 1}, nil)
			So(len(cards), ShouldEqual, 1)
		})
	})
}

func TestDrop(t *testing.T) {
	Convey("Given three cards on two rows", t, func() {
		cards := []model.DashboardCard{
			card("A", 0, 0, 2),
			card("B", 2, 0, 1),
			card("C", 0, 1, 1),
		}

		Convey("dropping C over B lands on the first row with room from B's row", func() {
			out, moved, err := Drop(cards, "C", DropTarget{CardID: "B"})
			So(err, ShouldBeNil)
			So(moved, ShouldBeTrue)
			c := out[Index(out, "C")]
			So(c.Column, ShouldEqual, 2)
			So(c.Position, ShouldEqual, 1)
			So(Validate(out), ShouldBeNil)
		})

		Convey("dropping B on an empty column region floats it to the top free row", func() {
			out, moved, err := Drop(cards, "B", DropTarget{Column: intp(1)})
			So(err, ShouldBeNil)
			So(moved, ShouldBeTrue)
			b := out[Index(out, "B")]
			So(b.Column, ShouldEqual, 1)
			So(b.Position, ShouldEqual, 1)
		})

		Convey("the moving card never blocks its own placement", func() {
			out, moved, err := Drop(cards, "A", DropTarget{Column: intp(1)})
			So(err, ShouldBeNil)
			So(moved, ShouldBeTrue)
			a := out[Index(out, "A")]
			So(a.Column, ShouldEqual, 1)
			So(a.Position, ShouldEqual, 1)
			So(Validate(out), ShouldBeNil)
		})

		Convey("dropping a card back on its own column region keeps its slot", func() {
			out, moved, err := Drop(cards, "C", DropTarget{Column: intp(0)})
			So(err, ShouldBeNil)
			So(moved, ShouldBeFalse)
			So(out, ShouldResemble, cards)
		})

		Convey("dropping on itself is a no-op", func() {
			out, moved, err := Drop(cards, "A", DropTarget{CardID: "A"})
			So(err, ShouldBeNil)
			So(moved, ShouldBeFalse)
			So(out, ShouldResemble, cards)
		})

		Convey("dropping on an unknown card or outside the grid is a no-op", func() {
			_, moved, err := Drop(cards, "A", DropTarget{CardID: "Z"})
			So(err, ShouldBeNil)
			So(moved, ShouldBeFalse)

			_, moved, err = Drop(cards, "A", DropTarget{})
			So(err, ShouldBeNil)
			So(moved, ShouldBeFalse)

			_, moved, err = Drop(cards, "A", DropTarget{Column: intp(3)})
			So(err, ShouldBeNil)
			So(moved, ShouldBeFalse)
		})

		Convey("dragging an unknown card fails", func() {
			_, _, err := Drop(cards, "Z", DropTarget{CardID: "A"})
			So(err, ShouldEqual, ErrCardNotFound)
		})
	})
}

func TestResizeAndRemove(t *testing.T) {
	Convey("Given two cards side by side", t, func() {
		cards := []model.DashboardCard{card("A", 0, 0, 1), card("B", 1, 0, 1)}

		Convey("widening A pushes it to the next row with room", func() {
			out, changed, err := Resize(cards, "A", 3)
			So(err, ShouldBeNil)
			So(changed, ShouldBeTrue)
			a := out[Index(out, "A")]
			So(a.Span, ShouldEqual, 3)
			So(a.Column, ShouldEqual, 0)
			So(a.Position, ShouldEqual, 1)
		})

		Convey("widening B clamps its column", func() {
			out, _, err := Resize(cards, "B", 3)
			So(err, ShouldBeNil)
			b := out[Index(out, "B")]
			So(b.Column, ShouldEqual, 0)
			So(Validate(out), ShouldBeNil)
		})

		Convey("keeping the same span is a no-op", func() {
			_, changed, err := Resize(cards, "A", 1)
			So(err, ShouldBeNil)
			So(changed, ShouldBeFalse)
		})

		Convey("removing a card drops it from the list", func() {
			out, err := Remove(cards, "A")
			So(err, ShouldBeNil)
			So(len(out), ShouldEqual, 1)
			_, err = Remove(cards, "Z")
			So(err, ShouldEqual, ErrCardNotFound)
		})
	})
}

func TestPlacementNeverOverlaps(t *testing.T) {
	Convey("Placing many cards of mixed spans at every column", t, func() {
		var cards []model.DashboardCard
		spans := []int{1, 2, 3, 1, 2, 1, 1, 3, 2, 2}
		for i, span := range spans {
			var err error
			var placed model.DashboardCard
			cards, placed, err = Place(cards, model.DashboardCard{ID: string(rune('a' + i)), Span: span}, intp(i%Columns))
			So(err, ShouldBeNil)
			So(placed.Column+placed.Span-1, ShouldBeLessThanOrEqualTo, Columns-1)
		}
		So(Validate(cards), ShouldBeNil)
	})
}

func TestValidate(t *testing.T) {
	Convey("Validate reports broken layouts", t, func() {
		So(errors.Is(Validate([]model.DashboardCard{card("a", 2, 0, 2)}), ErrOutOfBounds), ShouldBeTrue)
		So(errors.Is(Validate([]model.DashboardCard{card("a", 0, 0, 2), card("b", 1, 0, 1)}), ErrOverlap), ShouldBeTrue)
		So(errors.Is(Validate([]model.DashboardCard{card("a", 0, 0, 1), card("a", 1, 0, 1)}), ErrDuplicateCard), ShouldBeTrue)
		So(errors.Is(Validate([]model.DashboardCard{card("a", 0, 0, 0)}), ErrInvalidSpan), ShouldBeTrue)
		So(Validate([]model.DashboardCard{card("a", 0, 0, 1), card("b", 1, 0, 2)}), ShouldBeNil)

		err := Validate([]model.DashboardCard{card("a", 0, 0, 2), card("b", 1, 0, 1)})
		So(err.Error(), ShouldEqual, "a and b: cards overlap")
		So(errors.Cause(err), ShouldEqual, ErrOverlap)
	})
}

func TestSort(t *testing.T) {
	Convey("Cards are sorted by row then column", t, func() {
		out := Sort([]model.DashboardCard{card("c", 1, 1, 1), card("b", 2, 0, 1), card("a", 0, 0, 1)})
		So(out[0].ID, ShouldEqual, "a")
		So(out[1].ID, ShouldEqual, "b")
		So(out[2].ID, ShouldEqual, "c")
	})
}
