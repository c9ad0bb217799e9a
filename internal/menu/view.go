package menu

import "github.com/starford/menushare/internal/models"

// Category returns the category with the given id.
func (s *Store) Category(id string) (models.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.state.Categories, id, categoryID)
	if i < 0 {
		return models.Category{}, false
	}
	return s.state.Categories[i], true
}

// Item returns the item with the given id.
func (s *Store) Item(id string) (models.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.state.Items, id, itemID)
	if i < 0 {
		return models.Item{}, false
	}
	return s.state.Items[i], true
}

// ItemsInCategory returns the ordered items of one category.
func (s *Store) ItemsInCategory(id string) []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return itemsIn(s.state.Items, id)
}

// Sections returns the categories in display order with their items.
// Items whose category does not exist are not part of any section.
func (s *Store) Sections() []models.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Sections(s.state)
}

// Sections groups the items of st under their categories.
func Sections(st models.State) []models.Section {
	out := make([]models.Section, 0, len(st.Categories))
	for _, c := range st.Categories {
		out = append(out, models.Section{Category: c, Items: itemsIn(st.Items, c.ID)})
	}
	return out
}

func itemsIn(items []models.Item, categoryID string) []models.Item {
	out := []models.Item{}
	for _, it := range items {
		if it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	return out
}

// positionsIn returns the flat indexes of the items of one category.
func positionsIn(items []models.Item, categoryID string) []int {
	var out []int
	for i, it := range items {
		if it.CategoryID == categoryID {
			out = append(out, i)
		}
	}
	return out
}

func categoryID(c models.Category) string { return c.ID }

func itemID(it models.Item) string { return it.ID }

func indexOf[T any](xs []T, id string, key func(T) string) int {
	for i, x := range xs {
		if key(x) == id {
			return i
		}
	}
	return -1
}
