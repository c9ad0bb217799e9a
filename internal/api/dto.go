package api

import (
	"github.com/starford/menushare/internal/menuservice"
	"github.com/starford/menushare/internal/models"
	"github.com/starford/menushare/internal/sharecodec"
)

// MenuResponse is the full menu (aliased from the service layer).
type MenuResponse = menuservice.MenuDetail

// SectionsResponse wraps the per-category view.
type SectionsResponse struct {
	Sections []models.Section `json:"sections" validate:"required"`
}

// CreateCategoryRequest is the request body for adding a category.
type CreateCategoryRequest struct {
	Name string `json:"name" example:"Hot drinks" validate:"required"`
}

// MoveRequest is the request body for reordering a category or item.
type MoveRequest struct {
	Direction models.Direction `json:"direction" example:"up" validate:"required"`
}

// CreateItemRequest is the request body for adding an item.
type CreateItemRequest struct {
	CategoryID string `json:"categoryId" example:"3f1c..." validate:"required"`
	models.ItemFields
}

// ShareResponse is a share link plus a user-facing warning when it is long.
type ShareResponse struct {
	sharecodec.ShareLink
	Warning string `json:"warning,omitempty"`
}

// OrderLinkResponse carries a WhatsApp deep link.
type OrderLinkResponse struct {
	URL string `json:"url" example:"https://wa.me/9665...?text=..." validate:"required"`
}

const longLinkWarning = "This link is very long and may not open in some apps. Removing uploaded images makes it shorter."
