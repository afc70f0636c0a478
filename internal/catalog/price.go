package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidPrice = errors.New("invalid price")

// ParsePrice converts a display price string ("349€", "10,99€", "1.234,56 €")
// to integer minor units. Currency glyphs and thousands separators are
// stripped; the last ',' or '.' followed by one or two digits is the decimal
// separator. Non-positive results are rejected, provider prices must be > 0.
func ParsePrice(s string) (int64, error) {
	var b strings.Builder
	neg := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			b.WriteRune(r)
		case r == '-':
			neg = true
		}
	}
	raw := b.String()
	if raw == "" || raw == "," || raw == "." {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}

	intPart, fracPart := raw, ""
	if i := strings.LastIndexAny(raw, ",."); i >= 0 {
		frac := raw[i+1:]
		if len(frac) >= 1 && len(frac) <= 2 {
			intPart, fracPart = raw[:i], frac
		}
	}
	// sisa separator dianggap thousands separator
	intPart = strings.Map(dropSeparators, intPart)

	var units int64
	if intPart != "" {
		n, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
		}
		units = n
	}

	minor := units * 100
	switch len(fracPart) {
	case 0:
	case 1:
		n, _ := strconv.ParseInt(fracPart, 10, 64)
		minor += n * 10
	case 2:
		n, _ := strconv.ParseInt(fracPart, 10, 64)
		minor += n
	}

	if neg || minor <= 0 {
		return 0, fmt.Errorf("%w: %q parses to %d", ErrInvalidPrice, s, minor)
	}
	return minor, nil
}

func dropSeparators(r rune) rune {
	if r == ',' || r == '.' {
		return -1
	}
	return r
}
