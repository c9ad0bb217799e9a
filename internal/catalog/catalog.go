// Package catalog bulk-imports menus from YAML, JSON and XLSX files.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/menushare/internal/apperr"
	"github.com/starford/menushare/internal/imageembed"
	"github.com/starford/menushare/internal/menu"
	"github.com/starford/menushare/internal/models"
)

// Format is a menu file format.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// FormatOf picks the format from a file name's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: unsupported extension %q", apperr.ErrInvalidImport, filepath.Ext(path))
	}
}

// File is the on-disk menu layout. Items may be nested under their category
// or listed flat with an explicit category id.
type File struct {
	Brand      models.BrandInfo `yaml:"brand" json:"brandInfo"`
	Theme      models.Theme     `yaml:"theme" json:"theme"`
	Categories []FileCategory   `yaml:"categories" json:"categories"`
	Items      []models.Item    `yaml:"items" json:"items"`
}

// FileCategory is a category with optional nested items.
type FileCategory struct {
	models.Category `yaml:",inline"`
	Items           []models.Item `yaml:"items,omitempty" json:"items,omitempty"`
}

func newFile() File {
	return File{
		Brand: models.BrandInfo{Currency: models.DefaultCurrency},
		Theme: models.DefaultTheme(),
	}
}

// Read loads and validates the menu file at path.
func Read(path string) (models.Snapshot, error) {
	format, err := FormatOf(path)
	if err != nil {
		return models.Snapshot{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data, format, menu.NewUUID)
}

// Parse decodes, flattens and validates a menu document. gen supplies ids
// for records that have none.
func Parse(data []byte, format Format, gen menu.IDGenerator) (models.Snapshot, error) {
	var (
		f   File
		err error
	)
	switch format {
	case FormatYAML:
		f = newFile()
		err = yaml.Unmarshal(data, &f)
	case FormatJSON:
		f = newFile()
		err = json.Unmarshal(data, &f)
	case FormatXLSX:
		f, err = readXLSX(bytes.NewReader(data))
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", apperr.ErrInvalidImport, err)
	}

	snap := Flatten(f, gen)
	if err := Validate(snap); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

// Flatten turns a File into a snapshot: nested items follow their
// category, flat items come last, missing ids are generated and missing
// image kinds are inferred from the image string.
func Flatten(f File, gen menu.IDGenerator) models.Snapshot {
	snap := models.Snapshot{
		BrandInfo:  f.Brand,
		Categories: []models.Category{},
		Items:      []models.Item{},
		Theme:      f.Theme,
	}
	if snap.BrandInfo.LogoType == "" {
		snap.BrandInfo.LogoType = imageembed.KindOf(snap.BrandInfo.LogoURL)
	}

	addItem := func(it models.Item) {
		if it.ID == "" {
			it.ID = gen()
		}
		if it.ImageType == "" {
			it.ImageType = imageembed.KindOf(it.Image)
		}
		snap.Items = append(snap.Items, it)
	}

	for _, fc := range f.Categories {
		c := fc.Category
		if c.ID == "" {
			c.ID = gen()
		}
		snap.Categories = append(snap.Categories, c)
		for _, it := range fc.Items {
			it.CategoryID = c.ID
			addItem(it)
		}
	}
	for _, it := range f.Items {
		addItem(it)
	}
	return snap
}

// State converts an imported snapshot into an editable store state.
func State(snap models.Snapshot) models.State {
	return models.State{
		BrandInfo:  snap.BrandInfo,
		Categories: snap.Categories,
		Items:      snap.Items,
		Theme:      snap.Theme,
	}.Clone()
}
