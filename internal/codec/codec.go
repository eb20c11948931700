// Package codec encodes and decodes poster filenames.
//
// A poster file carries its identity entirely in its name:
//
//	Title [(Year)] [id] [(A<addedAt>)] [[[Library]] | (Movies)|(TV)] --Plex--.jpg
//
// Every other package reads and writes filenames through this package only.
package codec

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MediaType identifies which kind of remote item a poster belongs to.
type MediaType string

const (
	MediaMovie      MediaType = "movie"
	MediaShow       MediaType = "show"
	MediaSeason     MediaType = "season"
	MediaCollection MediaType = "collection"
)

// AllMediaTypes lists media types in processing order.
var AllMediaTypes = []MediaType{MediaMovie, MediaShow, MediaSeason, MediaCollection}

// LibraryKind is the kind of a remote library.
type LibraryKind string

const (
	KindMovie   LibraryKind = "movie"
	KindShow    LibraryKind = "show"
	KindUnknown LibraryKind = ""
)

// Status tags. Exactly one is present, immediately before the extension.
const (
	TagCurrent  = "--Plex--"
	TagOrphaned = "--Orphaned--"
)

// Collection type markers.
const (
	MarkerMovies = "(Movies)"
	MarkerTV     = "(TV)"
)

// DefaultExt is used when Name.Ext is empty.
const DefaultExt = "jpg"

// MaxTitleLength caps the sanitized title, in runes.
const MaxTitleLength = 200

var (
	ErrMissingTitle = errors.New("title is required")
	ErrMissingID    = errors.New("id is required")
	ErrInvalidID    = errors.New("id must be alphanumeric")
)

var (
	idPattern          = regexp.MustCompile(`\[([A-Za-z0-9]+)\]`)
	libraryPattern     = regexp.MustCompile(`\[\[(.+?)\]\]`)
	timestampPattern   = regexp.MustCompile(`\(A(\d{8,12})\)`)
	yearPattern        = regexp.MustCompile(`\((\d{4})\)`)
	collectionWord     = regexp.MustCompile(`(?i)\bcollection\b`)
	validIDPattern     = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	markerMoviesSuffix = " " + MarkerMovies
	markerTVSuffix     = " " + MarkerTV
)

// Name is the structured form of a poster filename.
type Name struct {
	Title       string
	ID          string
	MediaType   MediaType
	LibraryKind LibraryKind
	LibraryName string
	Year        int   // movies only
	AddedAt     int64 // epoch seconds, 0 if absent
	Orphaned    bool
	Ext         string
}

// MarkerFor returns the collection type marker for a library kind,
// or "" when the kind is unknown.
func MarkerFor(kind LibraryKind) string {
	switch kind {
	case KindMovie:
		return MarkerMovies
	case KindShow:
		return MarkerTV
	default:
		return ""
	}
}

// Encode renders n as a filename. The output is stable: equal inputs always
// produce byte-identical names.
func Encode(n Name) (string, error) {
	title := truncateRunes(Sanitize(n.Title), MaxTitleLength)
	if title == "" {
		return "", ErrMissingTitle
	}
	if n.ID == "" {
		return "", ErrMissingID
	}
	if !validIDPattern.MatchString(n.ID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, n.ID)
	}

	if n.MediaType == MediaCollection && !collectionWord.MatchString(title) {
		title += " Collection"
	}

	var b strings.Builder
	b.WriteString(title)
	if n.MediaType == MediaMovie && n.Year > 0 {
		fmt.Fprintf(&b, " (%04d)", n.Year)
	}
	fmt.Fprintf(&b, " [%s]", n.ID)
	if n.AddedAt > 0 {
		fmt.Fprintf(&b, " (A%d)", n.AddedAt)
	}

	if n.MediaType == MediaCollection {
		if marker := MarkerFor(n.LibraryKind); marker != "" {
			b.WriteString(" " + marker)
		}
	} else if lib := sanitizeLibraryName(n.LibraryName); lib != "" && n.MediaType != MediaSeason {
		fmt.Fprintf(&b, " [[%s]]", lib)
	}

	tag := TagCurrent
	if n.Orphaned {
		tag = TagOrphaned
	}
	b.WriteString(" " + tag)

	ext := strings.TrimPrefix(n.Ext, ".")
	if ext == "" {
		ext = DefaultExt
	}
	b.WriteString("." + ext)

	return b.String(), nil
}

// Parse decodes as much of filename as it can. It never fails; fields that
// cannot be recovered are left at their zero value. The mediaType argument
// tells Parse how to interpret optional segments, since the directory, not
// the name, determines the media type.
func Parse(filename string, mediaType MediaType) Name {
	n := Name{MediaType: mediaType}

	base, ext := splitExt(filename)
	n.Ext = ext

	switch {
	case strings.HasSuffix(base, " "+TagOrphaned):
		n.Orphaned = true
		base = strings.TrimSuffix(base, " "+TagOrphaned)
	case strings.HasSuffix(base, " "+TagCurrent):
		base = strings.TrimSuffix(base, " "+TagCurrent)
	}

	if mediaType == MediaCollection {
		switch {
		case strings.HasSuffix(base, markerMoviesSuffix):
			n.LibraryKind = KindMovie
			base = strings.TrimSuffix(base, markerMoviesSuffix)
		case strings.HasSuffix(base, markerTVSuffix):
			n.LibraryKind = KindShow
			base = strings.TrimSuffix(base, markerTVSuffix)
		}
	}

	if loc := libraryPattern.FindStringSubmatchIndex(base); loc != nil {
		n.LibraryName = base[loc[2]:loc[3]]
		base = strings.TrimSpace(base[:loc[0]] + base[loc[1]:])
	}

	if loc := timestampPattern.FindStringSubmatchIndex(base); loc != nil {
		n.AddedAt, _ = strconv.ParseInt(base[loc[2]:loc[3]], 10, 64)
		base = strings.TrimSpace(base[:loc[0]] + base[loc[1]:])
	}

	if loc := lastIDIndex(base); loc != nil {
		n.ID = base[loc[2]:loc[3]]
		base = strings.TrimSpace(base[:loc[0]] + base[loc[1]:])
	}

	if mediaType == MediaMovie {
		if m := yearPattern.FindAllStringSubmatchIndex(base, -1); len(m) > 0 {
			last := m[len(m)-1]
			if last[1] == len(base) {
				n.Year, _ = strconv.Atoi(base[last[2]:last[3]])
				base = strings.TrimSpace(base[:last[0]])
			}
		}
	}

	n.Title = base
	return n
}

// ExtractID returns the item id embedded in filename. Library-name segments
// are ignored and the last single-bracket token wins, so bracketed words in a
// title never shadow the id.
func ExtractID(filename string) (string, bool) {
	stripped := libraryPattern.ReplaceAllString(filename, "")
	loc := lastIDIndex(stripped)
	if loc == nil {
		return "", false
	}
	return stripped[loc[2]:loc[3]], true
}

// HasTimestamp reports whether filename carries an (A<epoch>) marker.
func HasTimestamp(filename string) bool {
	return timestampPattern.MatchString(filename)
}

// Timestamp returns the embedded added-at time.
func Timestamp(filename string) (int64, bool) {
	m := timestampPattern.FindStringSubmatch(filename)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// HasStatusTag reports whether filename ends in tag, just before the
// extension. The same text inside a title does not count.
func HasStatusTag(filename, tag string) bool {
	return statusTagIndex(filename, tag) >= 0
}

// IsCurrent reports whether filename is a live, managed poster.
func IsCurrent(filename string) bool {
	return HasStatusTag(filename, TagCurrent)
}

// IsOrphaned reports whether filename has been marked orphaned.
func IsOrphaned(filename string) bool {
	return HasStatusTag(filename, TagOrphaned)
}

// IsManaged reports whether filename carries either status tag.
func IsManaged(filename string) bool {
	return HasStatusTag(filename, TagCurrent) || HasStatusTag(filename, TagOrphaned)
}

// LibraryName returns the [[library]] segment of filename.
func LibraryName(filename string) (string, bool) {
	m := libraryPattern.FindStringSubmatch(filename)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CollectionKind returns the library kind encoded by a collection marker.
func CollectionKind(filename string) (LibraryKind, bool) {
	switch {
	case strings.Contains(filename, markerMoviesSuffix):
		return KindMovie, true
	case strings.Contains(filename, markerTVSuffix):
		return KindShow, true
	default:
		return KindUnknown, false
	}
}

// MatchesLibrary reports whether filename is tagged with libraryName.
// Names are compared after sanitizing, the same way Encode writes them.
func MatchesLibrary(filename, libraryName string) bool {
	got, ok := LibraryName(filename)
	return ok && got == sanitizeLibraryName(libraryName)
}

// HasShowPrefix reports whether a season filename belongs to showTitle.
// Titles compare case-insensitively.
func HasShowPrefix(filename, showTitle string) bool {
	show := Sanitize(showTitle)
	if show == "" {
		return false
	}
	prefix := show + " - "
	return len(filename) >= len(prefix) && strings.EqualFold(filename[:len(prefix)], prefix)
}

// InsertOrReplaceTimestamp sets the (A<epoch>) marker of filename. An existing
// marker is replaced in place; otherwise the marker goes right after the [id]
// token, else before the status tag, else before the extension.
func InsertOrReplaceTimestamp(filename string, epoch int64) string {
	marker := fmt.Sprintf("(A%d)", epoch)

	if loc := timestampPattern.FindStringIndex(filename); loc != nil {
		return filename[:loc[0]] + marker + filename[loc[1]:]
	}

	stripped := libraryPattern.ReplaceAllStringFunc(filename, func(s string) string {
		return strings.Repeat("\x00", len(s))
	})
	if loc := lastIDIndex(stripped); loc != nil {
		return filename[:loc[1]] + " " + marker + filename[loc[1]:]
	}

	for _, tag := range []string{TagCurrent, TagOrphaned} {
		if i := statusTagIndex(filename, tag); i >= 0 {
			return filename[:i] + marker + " " + filename[i:]
		}
	}

	base, ext := splitExt(filename)
	if ext == "" {
		return filename + " " + marker
	}
	return base + " " + marker + "." + ext
}

// RetagStatus replaces the trailing status tag from with to. A filename not
// ending in from is returned unchanged.
func RetagStatus(filename, from, to string) string {
	i := statusTagIndex(filename, from)
	if i < 0 {
		return filename
	}
	return filename[:i] + to + filename[i+len(from):]
}

// Orphan returns filename retagged as orphaned.
func Orphan(filename string) string {
	return RetagStatus(filename, TagCurrent, TagOrphaned)
}

func lastIDIndex(s string) []int {
	all := idPattern.FindAllStringSubmatchIndex(s, -1)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// statusTagIndex returns the offset of tag when it ends the base name of
// filename, or -1.
func statusTagIndex(filename, tag string) int {
	base, _ := splitExt(filename)
	switch {
	case base == tag:
		return 0
	case strings.HasSuffix(base, " "+tag):
		return len(base) - len(tag)
	}
	return -1
}

func splitExt(filename string) (string, string) {
	i := strings.LastIndex(filename, ".")
	if i <= 0 || i == len(filename)-1 || strings.ContainsAny(filename[i+1:], " ])") {
		return filename, ""
	}
	return filename[:i], filename[i+1:]
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
