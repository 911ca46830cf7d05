package natsadapter

import (
	"testing"

	"github.com/samirrijal/campusmap/internal/core/domain"
)

func TestSubjectFor(t *testing.T) {
	if got := SubjectFor(domain.SearchEvent{Found: true, Location: "Library"}); got != SubjectSearchCommitted {
		t.Errorf("expected %s, got %s", SubjectSearchCommitted, got)
	}
	if got := SubjectFor(domain.SearchEvent{Query: "gym"}); got != SubjectSearchNotFound {
		t.Errorf("expected %s, got %s", SubjectSearchNotFound, got)
	}
}
