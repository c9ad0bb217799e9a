package catalog

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/menushare/internal/apperr"
	"github.com/starford/menushare/internal/models"
)

var digitsRe = regexp.MustCompile(`^\d+$`)

// Validate checks an imported snapshot. Items whose category does not exist
// are accepted; they are simply not shown in any section.
func Validate(snap models.Snapshot) error {
	errs := validation.Errors{}

	b := &snap.BrandInfo
	if err := validation.ValidateStruct(b,
		validation.Field(&b.Phone, validation.Match(digitsRe).Error("must contain digits only")),
		validation.Field(&b.LogoType, validation.In(models.ImageKindURL, models.ImageKindUpload)),
	); err != nil {
		errs["brand"] = err
	}

	categoryIDs := map[string]bool{}
	for i := range snap.Categories {
		c := &snap.Categories[i]
		if err := validation.ValidateStruct(c,
			validation.Field(&c.ID, validation.Required, validation.By(unique(categoryIDs))),
			validation.Field(&c.Name, validation.Required),
		); err != nil {
			errs[fmt.Sprintf("categories[%d]", i)] = err
		}
	}

	itemIDs := map[string]bool{}
	for i := range snap.Items {
		it := &snap.Items[i]
		if err := validation.ValidateStruct(it,
			validation.Field(&it.ID, validation.Required, validation.By(unique(itemIDs))),
			validation.Field(&it.Name, validation.Required),
			validation.Field(&it.ImageType, validation.In(models.ImageKindURL, models.ImageKindUpload)),
		); err != nil {
			errs[fmt.Sprintf("items[%d]", i)] = err
		}
	}

	if err := errs.Filter(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidImport, err)
	}
	return nil
}

func unique(seen map[string]bool) validation.RuleFunc {
	return func(value any) error {
		id, _ := value.(string)
		if seen[id] {
			return errors.New("is duplicated")
		}
		seen[id] = true
		return nil
	}
}
