// Package sharecodec turns the shareable part of a menu into a URL fragment
// payload and back.
//
// Payloads are the JSON snapshot compressed with lzstring's URI-safe
// encoding, so links stay compatible with pages that use the JavaScript
// lz-string library.
package sharecodec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/starford/menushare/internal/apperr"
	"github.com/starford/menushare/internal/lzstring"
	"github.com/starford/menushare/internal/models"
)

// Brand is a decoded brand. LogoType is nil when the link predates it.
type Brand struct {
	models.BrandInfo
	LogoType *models.ImageKind `json:"logoType,omitempty"`
}

// Item is a decoded item. ImageType is nil when the link predates it.
type Item struct {
	models.Item
	ImageType *models.ImageKind `json:"imageType,omitempty"`
}

// Payload is a decoded share payload before defaults are filled in.
type Payload struct {
	BrandInfo  *Brand            `json:"brandInfo"`
	Categories []models.Category `json:"categories"`
	Items      []Item            `json:"items"`
	Theme      *models.Theme     `json:"theme"`
}

// Encode serializes snap to JSON and compresses it into a fragment-safe
// string.
func Encode(snap models.Snapshot) (string, error) {
	if snap.Categories == nil {
		snap.Categories = []models.Category{}
	}
	if snap.Items == nil {
		snap.Items = []models.Item{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		return "", fmt.Errorf("sharecodec: marshal snapshot: %w", err)
	}
	return lzstring.CompressToEncodedURIComponent(string(bytes.TrimRight(buf.Bytes(), "\n"))), nil
}

// Decode decompresses and parses a payload. Every failure wraps
// apperr.ErrMalformedShare.
func Decode(payload string) (Payload, error) {
	text, err := lzstring.DecompressFromEncodedURIComponent(payload)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", apperr.ErrMalformedShare, err)
	}

	raw := bytes.TrimSpace([]byte(text))
	if len(raw) == 0 || raw[0] != '{' {
		return Payload{}, fmt.Errorf("%w: not a JSON object", apperr.ErrMalformedShare)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", apperr.ErrMalformedShare, err)
	}
	if err := checkUniqueIDs(p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// checkUniqueIDs rejects payloads that would hydrate into a store with two
// categories or two items sharing an id. Encode never produces them.
func checkUniqueIDs(p Payload) error {
	seen := make(map[string]bool, len(p.Categories))
	for _, c := range p.Categories {
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate category id %q", apperr.ErrMalformedShare, c.ID)
		}
		seen[c.ID] = true
	}
	clear(seen)
	for _, it := range p.Items {
		if seen[it.ID] {
			return fmt.Errorf("%w: duplicate item id %q", apperr.ErrMalformedShare, it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}

// Hydrate builds a read-only store state from p. Records lacking fields that
// were added after old links were generated get their defaults.
func Hydrate(p Payload) models.State {
	st := models.DefaultState()
	st.ViewMode = true

	if p.BrandInfo != nil {
		b := p.BrandInfo.BrandInfo
		b.LogoType = models.ImageKindURL
		if p.BrandInfo.LogoType != nil {
			b.LogoType = *p.BrandInfo.LogoType
		}
		st.BrandInfo = b
	}

	if p.Categories != nil {
		st.Categories = append(st.Categories, p.Categories...)
	}

	for _, it := range p.Items {
		item := it.Item
		item.ImageType = models.ImageKindURL
		if it.ImageType != nil {
			item.ImageType = *it.ImageType
		}
		st.Items = append(st.Items, item)
	}

	if p.Theme != nil {
		st.Theme = *p.Theme
	}
	return st
}
