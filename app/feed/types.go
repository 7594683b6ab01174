package feed

import "errors"

// ErrFetch marks failures retrieving or parsing a feed.
var ErrFetch = errors.New("feed fetch failed")

// Header is the first sink row; its order matches Row.Values.
var Header = []string{"DATA", "UUID", "VIDEO", "TITLE", "USER"}

// TimestampLayout is the row timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

// Entry is one raw item from a syndication feed. Any field may be empty.
type Entry struct {
	Link      string
	Published string // raw string as found in the document
	Title     string
	Author    string
}

// Row is a normalized entry. Link is the only identity; ID is random per normalization.
type Row struct {
	Timestamp string
	ID        string
	Link      string
	Title     string
	User      string
}

// Values returns the row in sink column order.
func (r Row) Values() []string {
	return []string{r.Timestamp, r.ID, r.Link, r.Title, r.User}
}

// Configuration types

type Config struct {
	Name    string // Derived from filename (without .yml extension)
	URL     string `yaml:"url"`
	SheetID string `yaml:"sheet_id"`
	Active  *bool  `yaml:"active"`
}

// IsActive reports whether the monitor should run; an omitted flag means active.
func (c *Config) IsActive() bool {
	return c.Active == nil || *c.Active
}
