package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/starford/menushare/internal/models"
)

// Sheet names of a menu workbook. The brand and theme sheets hold key/value
// rows; categories and items have a header row naming their columns.
const (
	SheetBrand      = "brand"
	SheetTheme      = "theme"
	SheetCategories = "categories"
	SheetItems      = "items"
)

func readXLSX(r io.Reader) (File, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return File{}, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	f := newFile()
	sheets := map[string]string{}
	for _, name := range wb.GetSheetList() {
		sheets[strings.ToLower(strings.TrimSpace(name))] = name
	}
	if _, ok := sheets[SheetCategories]; !ok {
		return File{}, fmt.Errorf("workbook has no %q sheet", SheetCategories)
	}

	if name, ok := sheets[SheetBrand]; ok {
		kv, err := keyValues(wb, name)
		if err != nil {
			return File{}, err
		}
		setIfPresent(&f.Brand.Name, kv, "name")
		setIfPresent(&f.Brand.Slogan, kv, "slogan")
		setIfPresent(&f.Brand.LogoURL, kv, "logo_url")
		setIfPresent(&f.Brand.Phone, kv, "phone")
		setIfPresent(&f.Brand.Currency, kv, "currency")
		if v, ok := kv["logo_type"]; ok {
			f.Brand.LogoType = models.ImageKind(v)
		}
	}

	if name, ok := sheets[SheetTheme]; ok {
		kv, err := keyValues(wb, name)
		if err != nil {
			return File{}, err
		}
		setIfPresent(&f.Theme.PrimaryColor, kv, "primary_color")
		setIfPresent(&f.Theme.FontStyle, kv, "font_style")
	}

	rows, err := records(wb, sheets[SheetCategories])
	if err != nil {
		return File{}, err
	}
	for _, row := range rows {
		f.Categories = append(f.Categories, FileCategory{
			Category: models.Category{ID: row["id"], Name: row["name"]},
		})
	}

	if name, ok := sheets[SheetItems]; ok {
		rows, err := records(wb, name)
		if err != nil {
			return File{}, err
		}
		for _, row := range rows {
			f.Items = append(f.Items, models.Item{
				ID:          row["id"],
				CategoryID:  row["category_id"],
				Name:        row["name"],
				Description: row["description"],
				Price:       models.ParsePrice(row["price"]),
				Image:       row["image"],
				ImageType:   models.ImageKind(row["image_type"]),
			})
		}
	}
	return f, nil
}

// records reads a sheet whose first row names the columns. Blank rows are
// skipped.
func records(wb *excelize.File, sheet string) ([]map[string]string, error) {
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var out []map[string]string
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		blank := true
		for i, col := range header {
			if i < len(row) {
				v := strings.TrimSpace(row[i])
				rec[col] = v
				if v != "" {
					blank = false
				}
			}
		}
		if !blank {
			out = append(out, rec)
		}
	}
	return out, nil
}

// keyValues reads a two-column sheet of key/value rows.
func keyValues(wb *excelize.File, sheet string) (map[string]string, error) {
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(row[0]))
		if k == "" {
			continue
		}
		v := ""
		if len(row) > 1 {
			v = strings.TrimSpace(row[1])
		}
		out[k] = v
	}
	return out, nil
}

func setIfPresent(dst *string, kv map[string]string, key string) {
	if v, ok := kv[key]; ok {
		*dst = v
	}
}
