package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical status values. Accented forms are kept because they are the forms
// the bulletins (and the published output) use.
const (
	StatusFit     = "PRÓPRIO"
	StatusUnfit   = "IMPRÓPRIO"
	StatusUnknown = "DESCONHECIDO"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// titleDateRe matches loosely formatted dates in bulletin titles,
	// e.g. "Laudo 21_08_2025" or "laudo-21.08.25".
	titleDateRe = regexp.MustCompile(`(\d{1,2})[_\-./](\d{1,2})[_\-./](\d{2,4})`)

	isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	statusQuotes = strings.NewReplacer(`"`, "", `'`, "", "`", "")
)

// CollapseWhitespace replaces every run of whitespace, newlines included, with
// a single space. Used to build the flattened view of a page's text.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// FoldAccents removes diacritics (NFD decomposition, strip combining marks)
// so matching is locale-independent. Returns the input unchanged if the
// transform fails.
func FoldAccents(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(folder, s)
	if err != nil {
		return s
	}
	return out
}

// CanonicalizeStatus classifies a raw status token into one of the canonical
// values. The IMPROPRIO check must precede the PROPRIO check: the former is a
// superstring of the latter, and an unfit reading must never be classified as
// fit. Unrecognized non-empty tokens pass through uppercased; empty input
// yields StatusUnknown.
func CanonicalizeStatus(raw string) string {
	up := statusQuotes.Replace(strings.ToUpper(raw))
	folded := FoldAccents(up)
	switch {
	case strings.Contains(folded, "IMPROPRIO"):
		return StatusUnfit
	case strings.Contains(folded, "PROPRIO"):
		return StatusFit
	case up != "":
		return up
	default:
		return StatusUnknown
	}
}

// CanonicalizeDateBR converts a "DD/MM/YYYY" date to "YYYY-MM-DD". On failure
// the input is returned unchanged; downstream consumers treat a non-ISO
// string as unparsed passthrough.
func CanonicalizeDateBR(s string) string {
	t, err := time.Parse("02/01/2006", strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

// IsISODate reports whether s has the zero-padded "YYYY-MM-DD" shape that
// sorts chronologically under plain string comparison. Only such dates are
// admitted into a station's history.
func IsISODate(s string) bool {
	return isoDateRe.MatchString(s)
}

// ExtractTitleDate scans free text for a D[sep]M[sep]Y date with separator in
// {_ - . /}. Two-digit years are interpreted as 2000+yy. Used only for
// ranking candidate bulletins, never for station dates.
func ExtractTitleDate(s string) (time.Time, bool) {
	m := titleDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		// Day overflowed the month, e.g. 31/04.
		return time.Time{}, false
	}
	return t, true
}
