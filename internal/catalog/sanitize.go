package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrEmptyName = errors.New("product name empty after sanitizing")

// Smart punctuation -> ASCII. Provider product names kadang datang dari
// copy-paste editor teks, jadi kutip keriting harus dinormalisasi dulu.
var smartPunct = strings.NewReplacer(
	"‘", "'", // ‘
	"’", "'", // ’
	"‚", "'", // ‚
	"“", `"`, // “
	"”", `"`, // ”
	"„", `"`, // „
	"–", "-", // –
	"—", "-", // —
	" ", " ", // nbsp
)

const nameWhitelist = `-_.,'"()&/+:!?%`

// SanitizeName normalizes a product title for the provider catalog:
// smart quotes become ASCII quotes, anything outside letters, digits,
// spaces and a small punctuation whitelist is dropped.
func SanitizeName(s string) (string, error) {
	s = smartPunct.Replace(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case strings.ContainsRune(nameWhitelist, r):
			b.WriteRune(r)
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if out == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyName, s)
	}
	return out, nil
}
