package sharecodec

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/menushare/internal/apperr"
	"github.com/starford/menushare/internal/lzstring"
	"github.com/starford/menushare/internal/menu"
	"github.com/starford/menushare/internal/models"
)

func sampleState() models.State {
	st := models.DefaultState()
	st.BrandInfo = models.BrandInfo{
		Name:     "Cafe Noor",
		Slogan:   "قهوة مختصة",
		LogoURL:  "data:image/png;base64,iVBORw0KGgo=",
		LogoType: models.ImageKindUpload,
		Phone:    "966500000000",
		Currency: "SAR",
	}
	st.Categories = []models.Category{{ID: "c1", Name: "Drinks"}, {ID: "c2", Name: "Sweets"}}
	st.Items = []models.Item{
		{ID: "i1", CategoryID: "c1", Name: "Tea", Price: 5, ImageType: models.ImageKindURL, Image: "https://example.com/tea.jpg"},
		{ID: "i2", CategoryID: "c2", Name: "Kunafa", Price: 18.5, Description: "with cheese", ImageType: models.ImageKindUpload},
	}
	st.Theme = models.Theme{PrimaryColor: "#ff0000", FontStyle: "Cairo"}
	return st
}

func TestRoundTrip(t *testing.T) {
	st := sampleState()
	payload, err := Encode(st.Snapshot())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	p, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := Hydrate(p)

	want := st
	want.ViewMode = true
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestRoundTripEmptyMenu(t *testing.T) {
	payload, err := Encode(models.DefaultState().Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	p, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := Hydrate(p)
	if len(got.Categories) != 0 || len(got.Items) != 0 || got.Categories == nil || got.Items == nil {
		t.Errorf("sequences = %v / %v", got.Categories, got.Items)
	}
	if !got.ViewMode {
		t.Error("view mode not set")
	}
}

func TestEncodeHandlesNilSlices(t *testing.T) {
	payload, err := Encode(models.Snapshot{})
	if err != nil {
		t.Fatal(err)
	}
	text, err := lzstring.DecompressFromEncodedURIComponent(payload)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, `"categories":[]`) || !strings.Contains(text, `"items":[]`) {
		t.Errorf("payload JSON = %s", text)
	}
}

func TestHydrateFillsDefaultsForOldLinks(t *testing.T) {
	old := `{"brandInfo":{"name":"Old","slogan":"","logoUrl":"https://x/logo.png","phone":"1","currency":"USD"},` +
		`"categories":[{"id":"1700000000000","name":"Main"}],` +
		`"items":[{"id":"1700000000001","categoryId":"1700000000000","name":"Soup","price":3,"description":"","image":""}],` +
		`"theme":{"primaryColor":"#007bff","fontStyle":"Arial"}}`
	p, err := Decode(lzstring.CompressToEncodedURIComponent(old))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	st := Hydrate(p)
	if st.BrandInfo.LogoType != models.ImageKindURL {
		t.Errorf("logoType = %q, want url", st.BrandInfo.LogoType)
	}
	if st.Items[0].ImageType != models.ImageKindURL {
		t.Errorf("imageType = %q, want url", st.Items[0].ImageType)
	}
	if st.BrandInfo.Currency != "USD" || st.BrandInfo.Name != "Old" {
		t.Errorf("brand = %+v", st.BrandInfo)
	}
}

func TestHydrateKeepsExplicitKinds(t *testing.T) {
	st := sampleState()
	payload, _ := Encode(st.Snapshot())
	p, err := Decode(payload)
	if err != nil {
		t.Fatal(err)
	}
	got := Hydrate(p)
	if got.BrandInfo.LogoType != models.ImageKindUpload {
		t.Errorf("logoType overwritten: %q", got.BrandInfo.LogoType)
	}
	if got.Items[1].ImageType != models.ImageKindUpload {
		t.Errorf("imageType overwritten: %q", got.Items[1].ImageType)
	}
}

func TestHydrateMissingSections(t *testing.T) {
	p, err := Decode(lzstring.CompressToEncodedURIComponent(`{}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	st := Hydrate(p)
	if !reflect.DeepEqual(st.Theme, models.DefaultTheme()) {
		t.Errorf("theme = %+v", st.Theme)
	}
	if !reflect.DeepEqual(st.BrandInfo, models.DefaultBrandInfo()) {
		t.Errorf("brand = %+v", st.BrandInfo)
	}
	if st.Categories == nil || st.Items == nil {
		t.Error("sequences must not be nil")
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"garbage":      "!!!not-a-payload!!!",
		"empty result": "Q",
		"not json":     lzstring.CompressToEncodedURIComponent("hello"),
		"array":        lzstring.CompressToEncodedURIComponent(`[1,2]`),
		"null":         lzstring.CompressToEncodedURIComponent(`null`),
		"wrong types":  lzstring.CompressToEncodedURIComponent(`{"categories":"nope"}`),
		"truncated":    lzstring.CompressToEncodedURIComponent(`{"brandInfo":{"name":"x"`),
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(payload); !errors.Is(err, apperr.ErrMalformedShare) {
				t.Errorf("err = %v, want ErrMalformedShare", err)
			}
		})
	}
}

func TestDecodeRejectsDuplicateIDs(t *testing.T) {
	docs := []string{
		`{"categories":[{"id":"c1","name":"A"},{"id":"c1","name":"B"}],"items":[]}`,
		`{"categories":[{"id":"c1","name":"A"}],"items":[{"id":"i1","categoryId":"c1","name":"x"},{"id":"i1","categoryId":"c1","name":"y"}]}`,
	}
	for _, doc := range docs {
		payload := lzstring.CompressToEncodedURIComponent(doc)
		if _, err := Decode(payload); !errors.Is(err, apperr.ErrMalformedShare) {
			t.Errorf("Decode(%s) err = %v, want ErrMalformedShare", doc, err)
		}
		st, err := Load(FragmentMarker + payload)
		if err == nil || st.ViewMode || len(st.Categories) != 0 {
			t.Errorf("Load(%s) = %+v, %v; want default editor state", doc, st, err)
		}
	}

	// The same id may be used once as a category and once as an item.
	ok := lzstring.CompressToEncodedURIComponent(`{"categories":[{"id":"x","name":"A"}],"items":[{"id":"x","categoryId":"x","name":"y"}]}`)
	if _, err := Decode(ok); err != nil {
		t.Errorf("shared id across kinds: %v", err)
	}
}

func TestStoreScenario(t *testing.T) {
	s := menu.NewStore()
	cat := s.AddCategory("Drinks")
	s.AddItem(cat, models.ItemFields{Name: "Tea", Price: 5})

	link, err := BuildShareURL("https://menu.example/", s.Snapshot(), 0)
	if err != nil {
		t.Fatal(err)
	}

	st, err := Load(link.URL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	loaded := menu.NewStore(menu.WithState(st))

	if !loaded.ViewMode() {
		t.Error("view mode should be on after hydration")
	}
	sections := loaded.Sections()
	if len(sections) != 1 || sections[0].Category.Name != "Drinks" {
		t.Fatalf("sections = %+v", sections)
	}
	if len(sections[0].Items) != 1 {
		t.Fatalf("items = %+v", sections[0].Items)
	}
	if it := sections[0].Items[0]; it.Name != "Tea" || it.Price != 5 {
		t.Errorf("item = %+v", it)
	}
}
