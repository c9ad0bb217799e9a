package menu

// ChangeKind names what a mutation did.
type ChangeKind string

// Change kinds published to subscribers.
const (
	BrandUpdated    ChangeKind = "brand.updated"
	ThemeUpdated    ChangeKind = "theme.updated"
	ViewModeChanged ChangeKind = "viewmode.changed"
	StateReplaced   ChangeKind = "state.replaced"
	CategoryAdded   ChangeKind = "category.added"
	CategoryUpdated ChangeKind = "category.updated"
	CategoryRemoved ChangeKind = "category.removed"
	CategoryMoved   ChangeKind = "category.moved"
	ItemAdded       ChangeKind = "item.added"
	ItemUpdated     ChangeKind = "item.updated"
	ItemRemoved     ChangeKind = "item.removed"
	ItemMoved       ChangeKind = "item.moved"
)

// Change describes one committed mutation. ID is the affected category or
// item, empty for brand, theme, view-mode and wholesale changes.
type Change struct {
	Kind ChangeKind `json:"kind"`
	ID   string     `json:"id,omitempty"`
}

// Listener observes committed changes.
type Listener func(Change)
