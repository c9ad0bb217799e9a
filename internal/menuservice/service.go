// Package menuservice coordinates the menu store with sharing, importing,
// image embedding and order links. It is the layer both the REST API and
// the MCP server talk to.
package menuservice

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/menushare/internal/apperr"
	"github.com/starford/menushare/internal/catalog"
	"github.com/starford/menushare/internal/checksum"
	"github.com/starford/menushare/internal/imageembed"
	"github.com/starford/menushare/internal/menu"
	"github.com/starford/menushare/internal/models"
	"github.com/starford/menushare/internal/sharecodec"
	"github.com/starford/menushare/internal/whatsapp"
)

// MenuDetail is the full menu with a checksum of its JSON form.
type MenuDetail struct {
	models.State
	Checksum string `json:"checksum"`
}

// Config holds the service settings.
type Config struct {
	ShareBaseURL string
	WarnLength   int
	Images       imageembed.Options
}

// Service coordinates store, codec and embedding operations.
type Service struct {
	store  *menu.Store
	cfg    Config
	images *imageembed.Encoder
	newID  menu.IDGenerator
}

// NewService creates a new menu service over store.
func NewService(store *menu.Store, cfg Config) *Service {
	if cfg.WarnLength <= 0 {
		cfg.WarnLength = sharecodec.DefaultWarnLength
	}
	return &Service{
		store:  store,
		cfg:    cfg,
		images: imageembed.NewEncoder(cfg.Images),
		newID:  menu.NewUUID,
	}
}

// Store returns the underlying store.
func (s *Service) Store() *menu.Store { return s.store }

// ReadOnly reports whether the menu was opened from a share link.
func (s *Service) ReadOnly() bool { return s.store.ViewMode() }

func (s *Service) writable() error {
	if s.store.ViewMode() {
		return apperr.ErrReadOnly
	}
	return nil
}

// GetMenu returns the current menu.
func (s *Service) GetMenu(_ context.Context) (MenuDetail, error) {
	st := s.store.State()
	sum, err := checksum.JSON(st)
	if err != nil {
		return MenuDetail{}, err
	}
	return MenuDetail{State: st, Checksum: sum}, nil
}

// Sections returns the categories in order with their items.
func (s *Service) Sections(_ context.Context) []models.Section {
	return s.store.Sections()
}

// SetBrand merges p into the brand info. A phone number containing
// anything but digits is ignored, the other fields still apply.
func (s *Service) SetBrand(_ context.Context, p models.BrandPatch) (models.BrandInfo, error) {
	if err := s.writable(); err != nil {
		return models.BrandInfo{}, err
	}
	if p.Phone != nil && !models.DigitsOnly(*p.Phone) {
		slog.Debug("brand phone ignored", slog.String("phone", *p.Phone))
		p.Phone = nil
	}
	if p.LogoType != nil && *p.LogoType != models.ImageKindURL && *p.LogoType != models.ImageKindUpload {
		return models.BrandInfo{}, fmt.Errorf("%w: unknown logo type %q", apperr.ErrInvalidInput, *p.LogoType)
	}
	s.store.SetBrandInfo(p)
	return s.store.State().BrandInfo, nil
}

// SetTheme merges p into the theme.
func (s *Service) SetTheme(_ context.Context, p models.ThemePatch) (models.Theme, error) {
	if err := s.writable(); err != nil {
		return models.Theme{}, err
	}
	s.store.SetTheme(p)
	return s.store.State().Theme, nil
}

// SetLogo embeds an uploaded image as the brand logo.
func (s *Service) SetLogo(_ context.Context, r io.Reader) (models.BrandInfo, error) {
	if err := s.writable(); err != nil {
		return models.BrandInfo{}, err
	}
	uri, err := s.images.Embed(r)
	if err != nil {
		return models.BrandInfo{}, err
	}
	kind := models.ImageKindUpload
	s.store.SetBrandInfo(models.BrandPatch{LogoURL: &uri, LogoType: &kind})
	return s.store.State().BrandInfo, nil
}

// AddCategory appends a category.
func (s *Service) AddCategory(_ context.Context, name string) (models.Category, error) {
	if err := s.writable(); err != nil {
		return models.Category{}, err
	}
	if name == "" {
		return models.Category{}, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}
	id := s.store.AddCategory(name)
	slog.Debug("category added", slog.String("id", id))
	c, _ := s.store.Category(id)
	return c, nil
}

// UpdateCategory merges p into the category.
func (s *Service) UpdateCategory(_ context.Context, id string, p models.CategoryPatch) (models.Category, error) {
	if err := s.writable(); err != nil {
		return models.Category{}, err
	}
	if _, ok := s.store.Category(id); !ok {
		return models.Category{}, apperr.ErrNotFound
	}
	s.store.UpdateCategory(id, p)
	c, _ := s.store.Category(id)
	return c, nil
}

// RemoveCategory deletes the category and its items.
func (s *Service) RemoveCategory(_ context.Context, id string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, ok := s.store.Category(id); !ok {
		return apperr.ErrNotFound
	}
	s.store.RemoveCategory(id)
	slog.Debug("category removed", slog.String("id", id))
	return nil
}

// MoveCategory moves the category one step. Moving past either end is a
// no-op.
func (s *Service) MoveCategory(_ context.Context, id string, dir models.Direction) error {
	if err := s.writable(); err != nil {
		return err
	}
	if !dir.Valid() {
		return fmt.Errorf("%w: direction must be up or down", apperr.ErrInvalidInput)
	}
	if _, ok := s.store.Category(id); !ok {
		return apperr.ErrNotFound
	}
	s.store.ReorderCategory(id, dir)
	return nil
}

// AddItem appends an item to an existing category.
func (s *Service) AddItem(_ context.Context, categoryID string, f models.ItemFields) (models.Item, error) {
	if err := s.writable(); err != nil {
		return models.Item{}, err
	}
	if f.Name == "" {
		return models.Item{}, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}
	if _, ok := s.store.Category(categoryID); !ok {
		return models.Item{}, fmt.Errorf("category %q: %w", categoryID, apperr.ErrNotFound)
	}
	if f.ImageType == "" && f.Image != "" {
		f.ImageType = imageembed.KindOf(f.Image)
	}
	id := s.store.AddItem(categoryID, f)
	slog.Debug("item added", slog.String("id", id), slog.String("category", categoryID))
	it, _ := s.store.Item(id)
	return it, nil
}

// UpdateItem merges p into the item. Moving an item to another category
// requires that category to exist.
func (s *Service) UpdateItem(_ context.Context, id string, p models.ItemPatch) (models.Item, error) {
	if err := s.writable(); err != nil {
		return models.Item{}, err
	}
	if _, ok := s.store.Item(id); !ok {
		return models.Item{}, apperr.ErrNotFound
	}
	if p.CategoryID != nil {
		if _, ok := s.store.Category(*p.CategoryID); !ok {
			return models.Item{}, fmt.Errorf("category %q: %w", *p.CategoryID, apperr.ErrNotFound)
		}
	}
	s.store.UpdateItem(id, p)
	it, _ := s.store.Item(id)
	return it, nil
}

// RemoveItem deletes the item.
func (s *Service) RemoveItem(_ context.Context, id string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, ok := s.store.Item(id); !ok {
		return apperr.ErrNotFound
	}
	s.store.RemoveItem(id)
	slog.Debug("item removed", slog.String("id", id))
	return nil
}

// MoveItem moves the item one step within its category.
func (s *Service) MoveItem(_ context.Context, id string, dir models.Direction) error {
	if err := s.writable(); err != nil {
		return err
	}
	if !dir.Valid() {
		return fmt.Errorf("%w: direction must be up or down", apperr.ErrInvalidInput)
	}
	if _, ok := s.store.Item(id); !ok {
		return apperr.ErrNotFound
	}
	s.store.ReorderItem(id, dir)
	return nil
}

// SetItemImage embeds an uploaded image into the item.
func (s *Service) SetItemImage(_ context.Context, id string, r io.Reader) (models.Item, error) {
	if err := s.writable(); err != nil {
		return models.Item{}, err
	}
	if _, ok := s.store.Item(id); !ok {
		return models.Item{}, apperr.ErrNotFound
	}
	uri, err := s.images.Embed(r)
	if err != nil {
		return models.Item{}, err
	}
	kind := models.ImageKindUpload
	s.store.UpdateItem(id, models.ItemPatch{Image: &uri, ImageType: &kind})
	it, _ := s.store.Item(id)
	return it, nil
}

// OrderLink returns the WhatsApp link for ordering the item.
func (s *Service) OrderLink(_ context.Context, id string) (string, error) {
	it, ok := s.store.Item(id)
	if !ok {
		return "", apperr.ErrNotFound
	}
	return whatsapp.ItemOrderURL(s.store.State().BrandInfo, it)
}

// Share encodes the current menu into a share link.
func (s *Service) Share(_ context.Context) (sharecodec.ShareLink, error) {
	link, err := sharecodec.BuildShareURL(s.cfg.ShareBaseURL, s.store.Snapshot(), s.cfg.WarnLength)
	if err != nil {
		return sharecodec.ShareLink{}, err
	}
	slog.Debug("share link built", slog.Int("length", link.Length), slog.Bool("long", link.Long))
	return link, nil
}

// View resolves a link, fragment or payload the way the page does on load.
// It never fails: a broken payload yields the default editable state.
func (s *Service) View(_ context.Context, fragment string) models.State {
	st, _ := sharecodec.Load(fragment)
	return st
}

// Import parses a menu document and replaces the whole menu with it.
func (s *Service) Import(ctx context.Context, data []byte, format catalog.Format) (models.State, error) {
	if err := s.writable(); err != nil {
		return models.State{}, err
	}
	snap, err := catalog.Parse(data, format, s.newID)
	if err != nil {
		return models.State{}, err
	}
	return s.Replace(ctx, snap)
}

// Replace swaps the whole menu for snap.
func (s *Service) Replace(_ context.Context, snap models.Snapshot) (models.State, error) {
	if err := s.writable(); err != nil {
		return models.State{}, err
	}
	s.store.Replace(catalog.State(snap))
	slog.Info("menu replaced",
		slog.Int("categories", len(snap.Categories)), slog.Int("items", len(snap.Items)))
	return s.store.State(), nil
}
