package usecases

import (
	"sort"
	"strings"

	"github.com/samirrijal/campusmap/internal/core/domain"
)

// DefaultSuggestionLimit is how many candidates callers show by convention.
const DefaultSuggestionLimit = 5

// Score bits, highest priority first. Two candidates with equal scores are
// ordered by name, which is unique, so the order is total.
const (
	scoreName        = 1 << 3
	scoreNamePrefix  = 1 << 2
	scoreDescription = 1 << 1
	scoreCategory    = 1 << 0
)

// Rank returns every location whose name, description or category contains
// query (case-insensitive), best first. An empty query yields nil.
func Rank(query string, locations []domain.Location) []domain.RankedCandidate {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return nil
	}

	var out []domain.RankedCandidate
	for _, loc := range locations {
		if c, ok := score(term, loc); ok {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

// Top truncates a ranked list for display.
func Top(candidates []domain.RankedCandidate, n int) []domain.RankedCandidate {
	if n <= 0 || len(candidates) <= n {
		return candidates
	}
	return candidates[:n]
}

// Best returns the top-ranked location for query.
func Best(query string, locations []domain.Location) (domain.Location, bool) {
	ranked := Rank(query, locations)
	if len(ranked) == 0 {
		return domain.Location{}, false
	}
	return ranked[0].Location, true
}

// Matches reports whether loc is a candidate for the already-lowercased term.
func Matches(term string, loc domain.Location) bool {
	_, ok := score(term, loc)
	return ok
}

func score(term string, loc domain.Location) (domain.RankedCandidate, bool) {
	name := strings.ToLower(loc.Name)
	var s int
	field := domain.MatchedField("")

	if strings.Contains(strings.ToLower(loc.Category), term) {
		s |= scoreCategory
		field = domain.MatchedCategory
	}
	if strings.Contains(strings.ToLower(loc.Description), term) {
		s |= scoreDescription
		field = domain.MatchedDescription
	}
	if strings.Contains(name, term) {
		s |= scoreName
		field = domain.MatchedName
		if strings.HasPrefix(name, term) {
			s |= scoreNamePrefix
		}
	}
	if s == 0 {
		return domain.RankedCandidate{}, false
	}
	return domain.RankedCandidate{Location: loc, Score: s, MatchedField: field}, true
}

func less(a, b domain.RankedCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	an, bn := strings.ToLower(a.Location.Name), strings.ToLower(b.Location.Name)
	if an != bn {
		return an < bn
	}
	return a.Location.Name < b.Location.Name
}

// Highlight splits text into runs matching query (case-insensitive) and the
// text between them. An empty query returns text as a single unmatched run.
func Highlight(text, query string) []domain.Segment {
	if text == "" {
		return nil
	}
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return []domain.Segment{{Text: text}}
	}

	lower := strings.ToLower(text)
	// Lowercasing can change byte lengths for some runes; fall back to a
	// single run rather than slice at misaligned offsets.
	if len(lower) != len(text) {
		return []domain.Segment{{Text: text}}
	}

	var segs []domain.Segment
	pos := 0
	for {
		idx := strings.Index(lower[pos:], term)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(term)
		if start > pos {
			segs = append(segs, domain.Segment{Text: text[pos:start]})
		}
		segs = append(segs, domain.Segment{Text: text[start:end], Match: true})
		pos = end
	}
	if pos < len(text) {
		segs = append(segs, domain.Segment{Text: text[pos:]})
	}
	return segs
}
