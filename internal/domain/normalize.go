package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChain decomposes to NFD, strips combining marks, and recomposes.
// This turns "Nguyễn" into "Nguyen" while leaving ASCII untouched.
var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// dReplacer handles Vietnamese đ/Đ, which are standalone letters rather
// than base-plus-combining-mark sequences, so NFD stripping misses them.
var dReplacer = strings.NewReplacer("đ", "d", "Đ", "d")

// Fold removes diacritical marks and lowercases s for locale-insensitive
// matching. It must be applied identically to stored searchable text and to
// incoming queries. Fold is idempotent and safe on empty input; if the
// transform fails on malformed input the original bytes are lowercased.
func Fold(s string) string {
	if s == "" {
		return ""
	}

	folded, _, err := transform.String(foldChain, s)
	if err != nil {
		folded = s
	}

	return dReplacer.Replace(strings.ToLower(folded))
}

// FoldedSearchText builds the listing's searchable blob: display name,
// English name, headline and license number, folded. A single free-text
// query matches any of these fields.
func (l *Listing) FoldedSearchText() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{l.Name, l.EnglishName, l.Headline, l.LicenseNumber} {
		if s != "" {
			parts = append(parts, Fold(s))
		}
	}

	return strings.Join(parts, " ")
}

// NormalizeAttributes canonicalizes the filterable attributes: set values
// and gender lowercase, country code uppercase. The SQL filter path compares
// stored values byte-wise against normalized request params, so both sides
// must use the same canonical form. Applied by the materializer before
// persisting, alongside the search-text fold.
func (l *Listing) NormalizeAttributes() {
	l.CountryCode = strings.ToUpper(strings.TrimSpace(l.CountryCode))
	l.Languages = lowerAll(l.Languages)
	l.Specialties = lowerAll(l.Specialties)
	l.Services = lowerAll(l.Services)
	l.Gender = strings.ToLower(strings.TrimSpace(l.Gender))
}

func lowerAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return values
}
