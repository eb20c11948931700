package plex

import "encoding/xml"

// Identity holds Plex server identity information.
type Identity struct {
	Name    string
	Version string
}

// identityResponse is the XML response from root endpoint.
type identityResponse struct {
	XMLName      xml.Name `xml:"MediaContainer"`
	FriendlyName string   `xml:"friendlyName,attr"`
	Version      string   `xml:"version,attr"`
}

// Section represents a Plex library section.
type Section struct {
	Key           string     `xml:"key,attr"`
	Title         string     `xml:"title,attr"`
	Type          string     `xml:"type,attr"`
	Locations     []Location `xml:"Location"`
	ScannedAt     int64      `xml:"scannedAt,attr"`
	RefreshingRaw int        `xml:"refreshing,attr"`
}

// Refreshing returns true if the section is currently being scanned.
func (s Section) Refreshing() bool {
	return s.RefreshingRaw == 1
}

// Location represents a library section's filesystem location.
type Location struct {
	Path string `xml:"path,attr"`
}

// sectionsResponse is the XML response from /library/sections.
type sectionsResponse struct {
	XMLName  xml.Name  `xml:"MediaContainer"`
	Sections []Section `xml:"Directory"`
}

// Item is a movie, show, season or collection.
type Item struct {
	RatingKey        string
	Title            string
	Year             int
	Type             string // movie, show, season, collection
	Subtype          string // collections: movie or show
	Thumb            string // poster path, fetch with FetchImage
	AddedAt          int64
	ParentTitle      string
	Index            int
	LibrarySectionID string
}

// itemXML is the XML representation of an Item.
type itemXML struct {
	RatingKey        string `xml:"ratingKey,attr"`
	Title            string `xml:"title,attr"`
	Year             int    `xml:"year,attr"`
	Type             string `xml:"type,attr"`
	Subtype          string `xml:"subtype,attr"`
	Thumb            string `xml:"thumb,attr"`
	AddedAt          int64  `xml:"addedAt,attr"`
	ParentTitle      string `xml:"parentTitle,attr"`
	Index            int    `xml:"index,attr"`
	LibrarySectionID string `xml:"librarySectionID,attr"`
}

// containerResponse is a MediaContainer listing items.
type containerResponse struct {
	XMLName          xml.Name  `xml:"MediaContainer"`
	Size             int       `xml:"size,attr"`
	TotalSize        int       `xml:"totalSize,attr"`
	Offset           int       `xml:"offset,attr"`
	LibrarySectionID string    `xml:"librarySectionID,attr"`
	ParentTitle      string    `xml:"parentTitle,attr"`
	Videos           []itemXML `xml:"Video"`     // Movies
	Directories      []itemXML `xml:"Directory"` // Shows, seasons, collections
}

// Page is one page of a paginated listing.
type Page struct {
	Items     []Item
	Offset    int
	TotalSize int
}

// items flattens a container, filling container-level defaults.
func (r *containerResponse) items() []Item {
	all := make([]itemXML, 0, len(r.Videos)+len(r.Directories))
	all = append(all, r.Videos...)
	all = append(all, r.Directories...)

	out := make([]Item, len(all))
	for i, x := range all {
		section := x.LibrarySectionID
		if section == "" {
			section = r.LibrarySectionID
		}
		parent := x.ParentTitle
		if parent == "" {
			parent = r.ParentTitle
		}
		out[i] = Item{
			RatingKey:        x.RatingKey,
			Title:            x.Title,
			Year:             x.Year,
			Type:             x.Type,
			Subtype:          x.Subtype,
			Thumb:            x.Thumb,
			AddedAt:          x.AddedAt,
			ParentTitle:      parent,
			Index:            x.Index,
			LibrarySectionID: section,
		}
	}
	return out
}

// Metadata type codes used by the section edit endpoint.
const (
	TypeMovie      = 1
	TypeShow       = 2
	TypeSeason     = 3
	TypeCollection = 18
)

// TypeCode maps an item type to its numeric code.
func TypeCode(itemType string) int {
	switch itemType {
	case "movie":
		return TypeMovie
	case "show":
		return TypeShow
	case "season":
		return TypeSeason
	case "collection":
		return TypeCollection
	default:
		return 0
	}
}
