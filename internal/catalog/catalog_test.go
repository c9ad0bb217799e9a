package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/starford/menushare/internal/apperr"
	"github.com/starford/menushare/internal/menu"
	"github.com/starford/menushare/internal/models"
)

func counterIDs() menu.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

const nestedYAML = `
brand:
  name: Cafe Blue
  phone: "966500000000"
theme:
  primary_color: "#112233"
categories:
  - id: hot
    name: Hot drinks
    items:
      - name: Latte
        price: 14.5
      - name: Mocha
        price: "16 SAR"
  - name: Cold drinks
items:
  - id: ice
    category_id: hot
    name: Iced tea
    price: 9
    image: data:image/png;base64,AAAA
`

func TestParseYAMLNested(t *testing.T) {
	snap, err := Parse([]byte(nestedYAML), FormatYAML, counterIDs())
	if err != nil {
		t.Fatal(err)
	}

	if snap.BrandInfo.Name != "Cafe Blue" || snap.BrandInfo.Currency != models.DefaultCurrency {
		t.Errorf("brand = %+v", snap.BrandInfo)
	}
	if snap.Theme.PrimaryColor != "#112233" || snap.Theme.FontStyle != models.DefaultTheme().FontStyle {
		t.Errorf("theme = %+v", snap.Theme)
	}

	if len(snap.Categories) != 2 {
		t.Fatalf("categories = %+v", snap.Categories)
	}
	if snap.Categories[1].ID == "" {
		t.Error("category without id should get a generated one")
	}

	if len(snap.Items) != 3 {
		t.Fatalf("items = %+v", snap.Items)
	}
	want := []string{"Latte", "Mocha", "Iced tea"}
	for i, it := range snap.Items {
		if it.Name != want[i] {
			t.Errorf("items[%d] = %q, want %q", i, it.Name, want[i])
		}
		if it.CategoryID != "hot" {
			t.Errorf("items[%d].CategoryID = %q", i, it.CategoryID)
		}
	}
	if snap.Items[1].Price != 16 {
		t.Errorf("Mocha price = %v, want 16", snap.Items[1].Price)
	}
	if snap.Items[0].ImageType != models.ImageKindURL {
		t.Errorf("Latte image type = %q", snap.Items[0].ImageType)
	}
	if snap.Items[2].ID != "ice" || snap.Items[2].ImageType != models.ImageKindUpload {
		t.Errorf("Iced tea = %+v", snap.Items[2])
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{
	  "brandInfo": {"name": "Diner", "currency": "USD"},
	  "categories": [{"id": "c1", "name": "Mains", "items": [{"id": "i1", "name": "Burger", "price": "12"}]}],
	  "items": [{"id": "i2", "categoryId": "gone", "name": "Orphan", "price": 3}]
	}`
	snap, err := Parse([]byte(doc), FormatJSON, counterIDs())
	if err != nil {
		t.Fatal(err)
	}
	if snap.BrandInfo.Currency != "USD" {
		t.Errorf("currency = %q", snap.BrandInfo.Currency)
	}
	if len(snap.Items) != 2 || snap.Items[0].Price != 12 || snap.Items[0].CategoryID != "c1" {
		t.Errorf("items = %+v", snap.Items)
	}
	// orphans are kept; they just do not show up in any section
	if snap.Items[1].CategoryID != "gone" {
		t.Errorf("orphan = %+v", snap.Items[1])
	}
	if got := menu.Sections(State(snap)); len(got) != 1 || len(got[0].Items) != 1 {
		t.Errorf("sections = %+v", got)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		doc    string
	}{
		{"bad yaml", FormatYAML, "brand: [unterminated"},
		{"bad json", FormatJSON, `{"categories": 3}`},
		{"phone with letters", FormatYAML, "brand:\n  phone: call-me\n"},
		{"category without name", FormatYAML, "categories:\n  - id: a\n"},
		{"duplicate category ids", FormatYAML, "categories:\n  - {id: a, name: A}\n  - {id: a, name: B}\n"},
		{"duplicate item ids", FormatYAML, "items:\n  - {id: x, name: A}\n  - {id: x, name: B}\n"},
		{"item without name", FormatYAML, "items:\n  - {id: x}\n"},
		{"unknown image type", FormatYAML, "items:\n  - {id: x, name: A, image_type: ftp}\n"},
		{"unknown format", Format("toml"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.format, counterIDs())
			if !errors.Is(err, apperr.ErrInvalidImport) {
				t.Errorf("err = %v, want ErrInvalidImport", err)
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"menu.yaml": FormatYAML,
		"menu.YML":  FormatYAML,
		"a/b.json":  FormatJSON,
		"menu.xlsx": FormatXLSX,
	}
	for path, want := range tests {
		got, err := FormatOf(path)
		if err != nil || got != want {
			t.Errorf("FormatOf(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := FormatOf("menu.csv"); !errors.Is(err, apperr.ErrInvalidImport) {
		t.Errorf("csv err = %v", err)
	}
}

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", SheetBrand); err != nil {
		t.Fatal(err)
	}
	rows := map[string][][]any{
		SheetBrand: {
			{"name", "Shawarma House"},
			{"phone", "966511111111"},
			{"currency", "AED"},
		},
		SheetTheme: {
			{"primary_color", "#ff0000"},
		},
		SheetCategories: {
			{"id", "name"},
			{"wraps", "Wraps"},
			{},
			{"sides", "Sides"},
		},
		SheetItems: {
			{"ID", "Category_ID", "Name", "Description", "Price"},
			{"w1", "wraps", "Chicken wrap", "Garlic sauce", 11.5},
			{"", "sides", "Fries", "", "7"},
		},
	}
	for _, sheet := range []string{SheetBrand, SheetTheme, SheetCategories, SheetItems} {
		if sheet != SheetBrand {
			if _, err := wb.NewSheet(sheet); err != nil {
				t.Fatal(err)
			}
		}
		for i, row := range rows[sheet] {
			if len(row) == 0 {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	snap, err := Parse(buildWorkbook(t), FormatXLSX, counterIDs())
	if err != nil {
		t.Fatal(err)
	}
	if snap.BrandInfo.Name != "Shawarma House" || snap.BrandInfo.Currency != "AED" {
		t.Errorf("brand = %+v", snap.BrandInfo)
	}
	if snap.Theme.PrimaryColor != "#ff0000" || snap.Theme.FontStyle != models.DefaultTheme().FontStyle {
		t.Errorf("theme = %+v", snap.Theme)
	}
	if len(snap.Categories) != 2 || snap.Categories[1].ID != "sides" {
		t.Errorf("categories = %+v", snap.Categories)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("items = %+v", snap.Items)
	}
	if it := snap.Items[0]; it.ID != "w1" || it.Price != 11.5 || it.Description != "Garlic sauce" {
		t.Errorf("items[0] = %+v", it)
	}
	if it := snap.Items[1]; it.ID != "gen-1" || it.Price != 7 || it.CategoryID != "sides" {
		t.Errorf("items[1] = %+v", it)
	}
}

func TestParseXLSXWithoutCategories(t *testing.T) {
	wb := excelize.NewFile()
	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	wb.Close()

	if _, err := Parse(buf.Bytes(), FormatXLSX, counterIDs()); !errors.Is(err, apperr.ErrInvalidImport) {
		t.Errorf("err = %v", err)
	}
	if _, err := Parse([]byte("not a zip"), FormatXLSX, counterIDs()); !errors.Is(err, apperr.ErrInvalidImport) {
		t.Errorf("err = %v", err)
	}
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.yaml")
	if err := os.WriteFile(path, []byte(nestedYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	snap, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Items) != 3 {
		t.Errorf("items = %d", len(snap.Items))
	}

	if _, err := Read(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStateIsEditable(t *testing.T) {
	snap, err := Parse([]byte(nestedYAML), FormatYAML, counterIDs())
	if err != nil {
		t.Fatal(err)
	}
	st := State(snap)
	if st.ViewMode {
		t.Error("imported state should be editable")
	}
	st.Items[0].Name = "changed"
	if snap.Items[0].Name == "changed" {
		t.Error("State should copy the snapshot")
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.yaml")
	if err := os.WriteFile(path, []byte("categories:\n  - {id: a, name: A}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan models.Snapshot, 4)
	done := make(chan error, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		done <- Watch(ctx, path, logger, func(s models.Snapshot) { got <- s })
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	// an invalid write is skipped
	if err := os.WriteFile(path, []byte("categories:\n  - {id: a}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)
	select {
	case s := <-got:
		t.Fatalf("unexpected reload: %+v", s)
	default:
	}

	if err := os.WriteFile(path, []byte("categories:\n  - {id: a, name: A}\n  - {id: b, name: B}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case s := <-got:
		if len(s.Categories) != 2 {
			t.Errorf("categories = %+v", s.Categories)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	// other files in the directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)
	select {
	case s := <-got:
		t.Fatalf("unexpected reload: %+v", s)
	default:
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop")
	}
}
