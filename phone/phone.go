package phone

import "strings"

// CountryCode is the international dialing prefix applied to domestic numbers.
const CountryCode = "966"

// Normalize canonicalizes a Saudi phone number to the +966 international form.
// Contact data arrives in every imaginable shape (leading zero, 00 prefix, bare
// country code, embedded spaces and dashes), so this never fails: unparsable
// input is returned as a best-effort canonical string.
func Normalize(raw string) string {
	p := strip(raw)
	if p == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(p, "00"):
		p = "+" + p[2:]
	case strings.HasPrefix(p, "+"):
		// already international
	case strings.HasPrefix(p, CountryCode):
		p = "+" + p
	case strings.HasPrefix(p, "0"):
		p = "+" + CountryCode + p[1:]
	default:
		p = "+" + CountryCode + p
	}
	return p
}

// Domestic collapses a phone number to the single leading-zero domestic form.
// Stored records carry mixed formats, so comparisons in SQL and in Go both go
// through this form.
func Domestic(raw string) string {
	p := Normalize(raw)
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "+"+CountryCode) {
		return "0" + p[len(CountryCode)+1:]
	}
	return strings.TrimPrefix(p, "+")
}

// Equal reports whether two phone values identify the same number.
func Equal(a, b string) bool {
	if strip(a) == "" || strip(b) == "" {
		return false
	}
	return Normalize(a) == Normalize(b)
}

// strip removes spacing and separator characters, keeping digits and a single
// leading plus sign.
func strip(raw string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
