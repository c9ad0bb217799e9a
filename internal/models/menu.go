// Package models defines the value records of a shareable menu.
package models

// ImageKind records where an image string came from. It is advisory only:
// the value is stored and shared but never enforced.
type ImageKind string

// Image kinds.
const (
	ImageKindURL    ImageKind = "url"
	ImageKindUpload ImageKind = "upload"
)

// Direction is the unit of manual reordering.
type Direction string

// Reorder directions. Up moves towards the start of a sequence.
const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// DefaultCurrency is used until the owner picks another one.
const DefaultCurrency = "SAR"

// BrandInfo describes the business that owns the menu.
type BrandInfo struct {
	Name     string    `json:"name" yaml:"name"`
	Slogan   string    `json:"slogan" yaml:"slogan"`
	LogoURL  string    `json:"logoUrl" yaml:"logo_url"`
	LogoType ImageKind `json:"logoType" yaml:"logo_type"`
	Phone    string    `json:"phone" yaml:"phone"`
	Currency string    `json:"currency" yaml:"currency"`
}

// Category is a named section of the menu. Order in the owning sequence is
// the display order.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Item is a single dish or product. Membership in a category is by CategoryID.
type Item struct {
	ID          string    `json:"id" yaml:"id"`
	CategoryID  string    `json:"categoryId" yaml:"category_id"`
	Name        string    `json:"name" yaml:"name"`
	Price       Price     `json:"price" yaml:"price"`
	Description string    `json:"description" yaml:"description"`
	Image       string    `json:"image" yaml:"image"`
	ImageType   ImageKind `json:"imageType" yaml:"image_type"`
}

// Theme holds presentation preferences.
type Theme struct {
	PrimaryColor string `json:"primaryColor" yaml:"primary_color"`
	FontStyle    string `json:"fontStyle" yaml:"font_style"`
}

// Snapshot is the shareable subset of the menu state. The view-mode flag is
// not part of it: it is inferred from how the page was loaded.
type Snapshot struct {
	BrandInfo  BrandInfo  `json:"brandInfo" yaml:"brand"`
	Categories []Category `json:"categories" yaml:"categories"`
	Items      []Item     `json:"items" yaml:"items"`
	Theme      Theme      `json:"theme" yaml:"theme"`
}

// State is the complete content of a menu store.
type State struct {
	BrandInfo  BrandInfo  `json:"brandInfo"`
	Categories []Category `json:"categories"`
	Items      []Item     `json:"items"`
	Theme      Theme      `json:"theme"`
	ViewMode   bool       `json:"isViewMode"`
}

// Section is a category together with the ordered items that belong to it.
type Section struct {
	Category Category `json:"category"`
	Items    []Item   `json:"items"`
}

// DefaultBrandInfo returns the brand a fresh editor starts with.
func DefaultBrandInfo() BrandInfo {
	return BrandInfo{
		LogoType: ImageKindURL,
		Currency: DefaultCurrency,
	}
}

// DefaultTheme returns the theme a fresh editor starts with.
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor: "#007bff",
		FontStyle:    "Arial",
	}
}

// DefaultState returns an empty, editable menu.
func DefaultState() State {
	return State{
		BrandInfo:  DefaultBrandInfo(),
		Categories: []Category{},
		Items:      []Item{},
		Theme:      DefaultTheme(),
	}
}

// Clone returns a copy of s that shares no slices with it.
func (s State) Clone() State {
	out := s
	out.Categories = append(make([]Category, 0, len(s.Categories)), s.Categories...)
	out.Items = append(make([]Item, 0, len(s.Items)), s.Items...)
	return out
}

// Snapshot returns the shareable part of s.
func (s State) Snapshot() Snapshot {
	c := s.Clone()
	return Snapshot{
		BrandInfo:  c.BrandInfo,
		Categories: c.Categories,
		Items:      c.Items,
		Theme:      c.Theme,
	}
}
