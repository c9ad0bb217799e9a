// Package whatsapp builds wa.me order links for menu items.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/starford/menushare/internal/apperr"
	"github.com/starford/menushare/internal/models"
)

const baseURL = "https://wa.me/"

// OrderURL returns a deep link that opens a chat with phone, prefilled with
// an order message for itemName at price. It fails with
// apperr.ErrMissingPhone when phone is blank.
func OrderURL(phone, itemName, price, brandName string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", apperr.ErrMissingPhone
	}
	digits := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' {
			return r
		}
		return -1
	}, phone)

	msg := fmt.Sprintf("مرحباً %s 👋، أرغب بطلب: %s - بسعر %s. شكراً!", brandName, itemName, price)
	return baseURL + digits + "?text=" + EncodeURIComponent(msg), nil
}

// FormatPrice renders a price the way the menu shows it: "5 SAR".
func FormatPrice(p models.Price, currency string) string {
	return p.String() + " " + currency
}

// ItemOrderURL is OrderURL for an item of a menu with the given brand.
func ItemOrderURL(brand models.BrandInfo, it models.Item) (string, error) {
	return OrderURL(brand.Phone, it.Name, FormatPrice(it.Price, brand.Currency), brand.Name)
}

// EncodeURIComponent escapes s like JavaScript's encodeURIComponent, which
// leaves A-Z a-z 0-9 - _ . ! ~ * ' ( ) unescaped.
func EncodeURIComponent(s string) string {
	e := url.QueryEscape(s)
	e = strings.ReplaceAll(e, "+", "%20")
	r := strings.NewReplacer("%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")
	return r.Replace(e)
}
