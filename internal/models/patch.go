package models

// BrandPatch is a partial BrandInfo. Nil fields are left untouched.
type BrandPatch struct {
	Name     *string    `json:"name,omitempty"`
	Slogan   *string    `json:"slogan,omitempty"`
	LogoURL  *string    `json:"logoUrl,omitempty"`
	LogoType *ImageKind `json:"logoType,omitempty"`
	Phone    *string    `json:"phone,omitempty"`
	Currency *string    `json:"currency,omitempty"`
}

// Apply merges p into b and returns the result.
func (p BrandPatch) Apply(b BrandInfo) BrandInfo {
	setIf(&b.Name, p.Name)
	setIf(&b.Slogan, p.Slogan)
	setIf(&b.LogoURL, p.LogoURL)
	setIf(&b.LogoType, p.LogoType)
	setIf(&b.Phone, p.Phone)
	setIf(&b.Currency, p.Currency)
	return b
}

// CategoryPatch is a partial Category. The id is not patchable.
type CategoryPatch struct {
	Name *string `json:"name,omitempty"`
}

// Apply merges p into c and returns the result.
func (p CategoryPatch) Apply(c Category) Category {
	setIf(&c.Name, p.Name)
	return c
}

// ItemFields are the caller-supplied fields of a new item.
type ItemFields struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       Price     `json:"price"`
	Image       string    `json:"image"`
	ImageType   ImageKind `json:"imageType"`
}

// ItemPatch is a partial Item. The id is not patchable; CategoryID is.
type ItemPatch struct {
	CategoryID  *string    `json:"categoryId,omitempty"`
	Name        *string    `json:"name,omitempty"`
	Price       *Price     `json:"price,omitempty"`
	Description *string    `json:"description,omitempty"`
	Image       *string    `json:"image,omitempty"`
	ImageType   *ImageKind `json:"imageType,omitempty"`
}

// Apply merges p into it and returns the result.
func (p ItemPatch) Apply(it Item) Item {
	setIf(&it.CategoryID, p.CategoryID)
	setIf(&it.Name, p.Name)
	setIf(&it.Price, p.Price)
	setIf(&it.Description, p.Description)
	setIf(&it.Image, p.Image)
	setIf(&it.ImageType, p.ImageType)
	return it
}

// ThemePatch is a partial Theme.
type ThemePatch struct {
	PrimaryColor *string `json:"primaryColor,omitempty"`
	FontStyle    *string `json:"fontStyle,omitempty"`
}

// Apply merges p into t and returns the result.
func (p ThemePatch) Apply(t Theme) Theme {
	setIf(&t.PrimaryColor, p.PrimaryColor)
	setIf(&t.FontStyle, p.FontStyle)
	return t
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// DigitsOnly reports whether s consists of ASCII digits. The empty string
// qualifies, so a phone number can be cleared.
func DigitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
