package feed

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// PublishedLayout matches RFC 2822 style dates such as "Mon, 02 Jan 2023 10:00:00 +0000".
// The unpadded day also accepts zero-padded input.
const PublishedLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

type Normalizer struct {
	now   func() time.Time
	newID func() string
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Run converts an entry to a row. It never fails: an absent or malformed
// publication date becomes the current local time.
func (n *Normalizer) Run(entry Entry) Row {
	return Row{
		Timestamp: n.timestamp(entry.Published),
		ID:        n.newID(),
		Link:      strings.TrimSpace(entry.Link),
		Title:     cleanText(entry.Title),
		User:      cleanText(entry.Author),
	}
}

// RunAll normalizes entries preserving their order.
func (n *Normalizer) RunAll(entries []Entry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, n.Run(entry))
	}
	return rows
}

func (n *Normalizer) timestamp(published string) string {
	published = strings.TrimSpace(published)
	if published != "" {
		if t, err := time.Parse(PublishedLayout, published); err == nil {
			// Keep the wall clock of the entry's own offset.
			return t.Format(TimestampLayout)
		}
	}
	return n.now().Format(TimestampLayout)
}

func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
