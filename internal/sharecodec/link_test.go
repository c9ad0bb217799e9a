package sharecodec

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/menushare/internal/apperr"
	"github.com/starford/menushare/internal/models"
)

func TestBuildShareURL(t *testing.T) {
	link, err := BuildShareURL("https://menu.example/app#old", sampleState().Snapshot(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(link.URL, "https://menu.example/app#data=") {
		t.Errorf("url = %q", link.URL)
	}
	if strings.Count(link.URL, "#") != 1 {
		t.Errorf("url has several fragments: %q", link.URL)
	}
	if link.Length != len(link.URL) {
		t.Errorf("length = %d, want %d", link.Length, len(link.URL))
	}
	if link.Long {
		t.Error("small menu flagged as long")
	}
}

func TestBuildShareURLLong(t *testing.T) {
	st := sampleState()
	// Embedded images do not compress well.
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	var b strings.Builder
	x := uint32(2463534242)
	for i := 0; i < 3000; i++ {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		b.WriteByte(alphabet[x%64])
	}
	st.Items[0].Image = "data:image/jpeg;base64," + b.String()

	link, err := BuildShareURL("https://menu.example/", st.Snapshot(), 2000)
	if err != nil {
		t.Fatal(err)
	}
	if !link.Long {
		t.Errorf("link of %d chars not flagged", link.Length)
	}
	if link.URL == "" {
		t.Error("long link must still be produced")
	}
}

func TestPayloadFromFragment(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://x.example/#data=abc", "abc", true},
		{"#data=abc", "abc", true},
		{"data=abc", "abc", true},
		{"https://x.example/", "", false},
		{"#other=1", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := PayloadFromFragment(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PayloadFromFragment(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestLoadWithoutFragmentIsEditable(t *testing.T) {
	st, err := Load("")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if st.ViewMode {
		t.Error("should be editable")
	}
}

func TestLoadBrokenFragmentFallsBack(t *testing.T) {
	st, err := Load("#data=%%%")
	if !errors.Is(err, apperr.ErrMalformedShare) {
		t.Errorf("err = %v", err)
	}
	if st.ViewMode || len(st.Categories) != 0 {
		t.Errorf("state = %+v, want default editor state", st)
	}
	if st.BrandInfo != models.DefaultBrandInfo() {
		t.Errorf("brand = %+v", st.BrandInfo)
	}
}
