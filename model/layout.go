package model

// DashboardCard is a card placed in the 3-column dashboard grid.
// Column + Span - 1 never exceeds the last grid column.
type DashboardCard struct {
	Dashboard string `json:"-" gorm:"primaryKey;column:dashboard"`
	ID        string `json:"id" gorm:"primaryKey;column:card_id"`
	Title     string `json:"title" gorm:"column:title"`
	Widget    string `json:"widget" gorm:"column:widget"`
	Column    int    `json:"column" gorm:"column:grid_column"`
	Position  int    `json:"position" gorm:"column:grid_row"`
	Span      int    `json:"span" gorm:"column:span"`
}

// TableName godoc
func (DashboardCard) TableName() string {
	return "dashboard_cards"
}

// Dashboard is the view of a dashboard returned to the console
type Dashboard struct {
	Name       string          `json:"name"`
	Cards      []DashboardCard `json:"cards"`
	HasChanges bool            `json:"has_changes"`
}

// AddCardRequest godoc
type AddCardRequest struct {
	ID     string `json:"id"`
	Title  string `json:"title" binding:"required"`
	Widget string `json:"widget"`
	Span   int    `json:"span"`
	Column *int   `json:"column"`
}

// DropCardRequest describes where a dragged card was released.
// OverCard is set when the card was released over another card, Column when
// it was released over an empty column region. Neither set means the card
// was dropped outside of the grid.
type DropCardRequest struct {
	OverCard string `json:"over_card"`
	Column   *int   `json:"column"`
}

// ResizeCardRequest godoc
type ResizeCardRequest struct {
	Span int `json:"span" binding:"required"`
}
