// Package testutil provides shared test helpers for setting up menus.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/starford/menushare/internal/menu"
	"github.com/starford/menushare/internal/models"
)

// IDs returns a deterministic id generator producing prefix-1, prefix-2, ...
func IDs(prefix string) menu.IDGenerator {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}

// SampleSnapshot is a small two-category menu with fixed ids.
func SampleSnapshot() models.Snapshot {
	return models.Snapshot{
		BrandInfo: models.BrandInfo{
			Name:     "Cafe Blue",
			Slogan:   "Fresh every morning",
			LogoType: models.ImageKindURL,
			Phone:    "966500000000",
			Currency: models.DefaultCurrency,
		},
		Categories: []models.Category{
			{ID: "hot", Name: "Hot drinks"},
			{ID: "cake", Name: "Cakes"},
		},
		Items: []models.Item{
			{ID: "latte", CategoryID: "hot", Name: "Latte", Price: 14.5, ImageType: models.ImageKindURL},
			{ID: "cheese", CategoryID: "cake", Name: "Cheesecake", Price: 22, ImageType: models.ImageKindURL},
			{ID: "mocha", CategoryID: "hot", Name: "Mocha", Price: 16, Description: "With cream", ImageType: models.ImageKindURL},
		},
		Theme: models.DefaultTheme(),
	}
}

// SampleState is SampleSnapshot as an editable state.
func SampleState() models.State {
	snap := SampleSnapshot()
	return models.State{
		BrandInfo:  snap.BrandInfo,
		Categories: snap.Categories,
		Items:      snap.Items,
		Theme:      snap.Theme,
	}
}

// TestStore creates a store seeded with SampleState and deterministic ids.
func TestStore(t *testing.T) *menu.Store {
	t.Helper()
	return menu.NewStore(menu.WithState(SampleState()), menu.WithIDGenerator(IDs("new")))
}

// ViewStore creates a store holding SampleState in view mode, as if it was
// opened from a share link.
func ViewStore(t *testing.T) *menu.Store {
	t.Helper()
	st := SampleState()
	st.ViewMode = true
	return menu.NewStore(menu.WithState(st))
}
