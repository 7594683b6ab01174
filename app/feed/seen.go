package feed

import "log/slog"

// SeenSet remembers the links already forwarded to the sink during this process.
// It is not persisted and never pruned. A SeenSet belongs to a single monitor
// loop and is not safe for concurrent use.
type SeenSet struct {
	links map[string]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{links: make(map[string]struct{})}
}

// FilterUnseen returns, in input order, the rows whose link has not been seen
// and marks those links as seen. Rows without a link are always returned.
func (s *SeenSet) FilterUnseen(rows []Row) []Row {
	unseen := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.Link == "" {
			slog.Debug("Entry without link treated as new", "title", row.Title)
			unseen = append(unseen, row)
			continue
		}

		if _, ok := s.links[row.Link]; ok {
			continue
		}

		s.links[row.Link] = struct{}{}
		unseen = append(unseen, row)
	}
	return unseen
}

// Seed marks links as seen without producing rows. Empty links are ignored.
func (s *SeenSet) Seed(links []string) int {
	added := 0
	for _, link := range links {
		if link == "" {
			continue
		}
		if _, ok := s.links[link]; !ok {
			s.links[link] = struct{}{}
			added++
		}
	}
	return added
}

func (s *SeenSet) Contains(link string) bool {
	_, ok := s.links[link]
	return ok
}

func (s *SeenSet) Len() int {
	return len(s.links)
}
