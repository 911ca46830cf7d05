package usecases_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/samirrijal/campusmap/internal/core/domain"
	"github.com/samirrijal/campusmap/internal/core/usecases"
)

func campus() []domain.Location {
	return []domain.Location{
		{Name: "Library", Category: "Facilities", Description: "School library with study areas and reading materials."},
		{Name: "Admin Office", Category: "Administrative", Description: "Administrative offices and staff rooms."},
		{Name: "Caregiving", Category: "Academic", Description: "Caregiving classrooms for students."},
		{Name: "Junior High / Canteen / Clinic", Category: "Academic", Description: "Junior High classrooms, canteen, and clinic."},
		{Name: "Food Processing 1", Category: "Academic", Description: "Food Processing lab 1."},
		{Name: "Food Processing 2", Category: "Academic", Description: "Food Processing lab 2."},
		{Name: "Canteen 2", Category: "Facilities", Description: "Secondary canteen for students."},
	}
}

func names(ranked []domain.RankedCandidate) []string {
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Location.Name)
	}
	return out
}

func TestRank_PrefixOfName(t *testing.T) {
	ranked := usecases.Rank("librar", []domain.Location{{Name: "Library"}})
	if len(ranked) != 1 || ranked[0].Location.Name != "Library" {
		t.Fatalf("expected Library, got %v", names(ranked))
	}
	if ranked[0].MatchedField != domain.MatchedName {
		t.Errorf("expected name match, got %q", ranked[0].MatchedField)
	}
}

func TestRank_TieBrokenByName(t *testing.T) {
	locs := []domain.Location{{Name: "Food Processing 2"}, {Name: "Food Processing 1"}}
	got := names(usecases.Rank("food", locs))
	want := []string{"Food Processing 1", "Food Processing 2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRank_BlankQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		if got := usecases.Rank(q, campus()); len(got) != 0 {
			t.Errorf("Rank(%q) = %v, want empty", q, names(got))
		}
	}
}

func TestRank_FieldPriority(t *testing.T) {
	locs := []domain.Location{
		{Name: "Zeta", Category: "lab"},
		{Name: "Yard", Description: "outdoor lab"},
		{Name: "Main Lab"},
		{Name: "Lab Annex"},
	}
	got := names(usecases.Rank("lab", locs))
	want := []string{"Lab Annex", "Main Lab", "Yard", "Zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRank_CaseInsensitive(t *testing.T) {
	got := names(usecases.Rank("CANTEEN", campus()))
	want := []string{"Canteen 2", "Junior High / Canteen / Clinic"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRank_NoFalsePositivesOrNegatives(t *testing.T) {
	locs := campus()
	for _, q := range []string{"a", "lab", "stud", "grade", "office", "x", "2", " clinic "} {
		term := strings.ToLower(strings.TrimSpace(q))
		ranked := usecases.Rank(q, locs)

		inResult := map[string]bool{}
		for _, r := range ranked {
			inResult[r.Location.Name] = true
			if !usecases.Matches(term, r.Location) {
				t.Errorf("%q: %q ranked but does not match", q, r.Location.Name)
			}
		}
		for _, l := range locs {
			if usecases.Matches(term, l) && !inResult[l.Name] {
				t.Errorf("%q: %q matches but was not ranked", q, l.Name)
			}
		}
	}
}

func TestRank_TotalOrder(t *testing.T) {
	locs := append(campus(),
		domain.Location{Name: "library annex", Description: "overflow"},
		domain.Location{Name: "LIBRARY ANNEX 2"},
	)
	for _, q := range []string{"a", "e", "library", "c"} {
		ranked := usecases.Rank(q, locs)
		for i := 1; i < len(ranked); i++ {
			prev, cur := ranked[i-1], ranked[i]
			if prev.Location.Name == cur.Location.Name {
				t.Fatalf("%q: duplicate entry %q", q, cur.Location.Name)
			}
			if prev.Score < cur.Score {
				t.Errorf("%q: %q (score %d) ranked above %q (score %d)", q,
					prev.Location.Name, prev.Score, cur.Location.Name, cur.Score)
			}
			if prev.Score == cur.Score && strings.ToLower(prev.Location.Name) > strings.ToLower(cur.Location.Name) {
				t.Errorf("%q: equal scores not ordered by name: %q before %q", q, prev.Location.Name, cur.Location.Name)
			}
		}
		// Ranking is independent of input order.
		reversed := make([]domain.Location, len(locs))
		for i, l := range locs {
			reversed[len(locs)-1-i] = l
		}
		if !reflect.DeepEqual(names(ranked), names(usecases.Rank(q, reversed))) {
			t.Errorf("%q: order depends on input order", q)
		}
	}
}

func TestTop(t *testing.T) {
	ranked := usecases.Rank("a", campus())
	if len(ranked) <= usecases.DefaultSuggestionLimit {
		t.Fatalf("fixture should exceed the limit, got %d", len(ranked))
	}
	top := usecases.Top(ranked, usecases.DefaultSuggestionLimit)
	if len(top) != usecases.DefaultSuggestionLimit {
		t.Errorf("expected %d, got %d", usecases.DefaultSuggestionLimit, len(top))
	}
	if len(usecases.Top(ranked, 0)) != len(ranked) {
		t.Error("a non-positive limit keeps everything")
	}
}

func TestBest(t *testing.T) {
	loc, ok := usecases.Best("admin", campus())
	if !ok || loc.Name != "Admin Office" {
		t.Errorf("expected Admin Office, got %q (ok=%v)", loc.Name, ok)
	}
	if _, ok := usecases.Best("gymnasium", campus()); ok {
		t.Error("expected no match")
	}
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		text, query string
		want        []domain.Segment
	}{
		{"Food Processing 1", "food", []domain.Segment{{Text: "Food", Match: true}, {Text: " Processing 1"}}},
		{"Canteen 2", "", []domain.Segment{{Text: "Canteen 2"}}},
		{"Junior High / Canteen / Clinic", "in", []domain.Segment{
			{Text: "Junior High / Canteen / Cl"}, {Text: "in", Match: true}, {Text: "ic"},
		}},
		{"Library", "zzz", []domain.Segment{{Text: "Library"}}},
		{"aaa", "a", []domain.Segment{{Text: "a", Match: true}, {Text: "a", Match: true}, {Text: "a", Match: true}}},
	}

	for _, tt := range tests {
		got := usecases.Highlight(tt.text, tt.query)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Highlight(%q, %q) = %+v, want %+v", tt.text, tt.query, got, tt.want)
		}
	}
}
