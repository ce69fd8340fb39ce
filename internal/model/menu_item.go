package model

// MenuItem represents a dish on the restaurant menu.  Menu rows are
// managed by catalog tooling outside this service; the ordering
// workflow only ever reads them.  This struct corresponds to a row in
// the `menu_items` table.
//
// Fields:
//  ID          – stable identifier (UUID string).
//  Name        – display name of the dish.
//  Price       – unit price; never negative.
//  Description – optional longer description.
//  Category    – menu section, e.g. "starters" or "mains".
//  Image       – optional image URL.
type MenuItem struct {
	ID          string  `json:"id"`          // menu_items.id
	Name        string  `json:"name"`        // menu_items.name
	Price       float64 `json:"price"`       // menu_items.price
	Description string  `json:"description"` // menu_items.description
	Category    string  `json:"category"`    // menu_items.category
	Image       string  `json:"image"`       // menu_items.image
}
