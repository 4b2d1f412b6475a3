package dedup

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CanonicalName is the comparable form of a free-form person name or book title.
//
// MatchKey is a pure function of Raw: "Tom Clancy", "Clancy, Tom", "CLANCY, TOM"
// and "tom clancy" all share the key "tom clancy".
type CanonicalName struct {
	Raw         string `json:"raw"`
	DisplayForm string `json:"display_form"`
	MatchKey    string `json:"match_key"`
}

// IsEmpty reports whether nothing comparable was left after normalization.
func (n CanonicalName) IsEmpty() bool {
	return n.MatchKey == ""
}

// Canonicalize normalizes raw into a CanonicalName.
//
//  1. trim surrounding whitespace
//  2. exactly one comma: "Last, First" becomes "First Last"
//     (several commas are ambiguous and left as they are)
//  3. title-case every whitespace separated token -> DisplayForm
//  4. lowercase DisplayForm -> MatchKey
//
// It never fails: empty input yields an empty MatchKey and the caller decides
// whether that is acceptable.
func Canonicalize(raw string) CanonicalName {
	s := strings.TrimSpace(raw)

	if strings.Count(s, ",") == 1 {
		parts := strings.SplitN(s, ",", 2)
		last := strings.TrimSpace(parts[0])
		first := strings.TrimSpace(parts[1])
		s = strings.TrimSpace(first + " " + last)
	}

	tokens := strings.Fields(s)
	for i, tok := range tokens {
		tokens[i] = titleToken(tok)
	}
	display := strings.Join(tokens, " ")

	return CanonicalName{
		Raw:         raw,
		DisplayForm: display,
		MatchKey:    strings.Join(strings.Fields(strings.ToLower(display)), " "),
	}
}

// ParseName canonicalizes an optional field. Only a missing value is an error;
// malformed content still normalizes.
func ParseName(raw *string) (CanonicalName, error) {
	if raw == nil {
		return CanonicalName{}, ErrInvalidInput
	}
	return Canonicalize(*raw), nil
}

// MatchKey is shorthand for Canonicalize(raw).MatchKey.
func MatchKey(raw string) string {
	return Canonicalize(raw).MatchKey
}

func titleToken(tok string) string {
	r, size := utf8.DecodeRuneInString(tok)
	if r == utf8.RuneError {
		return strings.ToLower(tok)
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(tok[size:])
}
