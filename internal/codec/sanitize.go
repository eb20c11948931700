package codec

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// illegalChars are characters not allowed in filenames on common filesystems.
var illegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// multiSpace matches runs of whitespace.
var multiSpace = regexp.MustCompile(`\s+`)

// dropControl removes control characters after NFC composition.
var dropControl = transform.Chain(norm.NFC, runes.Remove(runes.Predicate(unicode.IsControl)))

// Sanitize strips characters that are unsafe in filenames and collapses
// whitespace. Letters, marks, numbers and all other punctuation are kept.
// Input is NFC-normalized so that composed and decomposed forms of the same
// title encode identically.
func Sanitize(name string) string {
	// Tabs and newlines become spaces before control characters are dropped.
	name = multiSpace.ReplaceAllString(name, " ")

	if out, _, err := transform.String(dropControl, name); err == nil {
		name = out
	}

	name = illegalChars.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// sanitizeLibraryName additionally removes brackets, which delimit the
// library segment.
func sanitizeLibraryName(name string) string {
	name = strings.NewReplacer("[", "", "]", "").Replace(name)
	return Sanitize(name)
}
