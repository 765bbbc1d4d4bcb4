package matching

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/Divyesh-Thirukonda/quantshit-sub001/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultMatcher(threshold float64) *Matcher {
	j := NewJaccard(NewNormalizer(nil), JaccardConfig{KeyTermBonusCap: 0.2})
	return NewMatcher(j, threshold, testLogger())
}

func TestFindMatchesKeepsPairsAboveThreshold(t *testing.T) {
	a := []domain.Listing{
		{VenueID: domain.VenueKalshi, ID: "k1", Title: "Trump wins 2024 election", YesPrice: 0.42, NoPrice: 0.58, Active: true},
	}
	b := []domain.Listing{
		{VenueID: domain.VenuePolymarket, ID: "p1", Title: "Trump wins the 2024 election", YesPrice: 0.65, NoPrice: 0.35, Active: true},
		{VenueID: domain.VenuePolymarket, ID: "p2", Title: "Lakers win NBA finals", YesPrice: 0.30, NoPrice: 0.70, Active: true},
	}

	pairs := defaultMatcher(0.5).FindMatches(a, b)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 match, got %d", len(pairs))
	}
	if pairs[0].A.ID != "k1" || pairs[0].B.ID != "p1" {
		t.Fatalf("unexpected pair: %s / %s", pairs[0].A.ID, pairs[0].B.ID)
	}
	if pairs[0].Confidence < 0.5 {
		t.Fatalf("confidence %.4f below threshold", pairs[0].Confidence)
	}
}

func TestFindMatchesDisjointTitlesEvenWithPriceGap(t *testing.T) {
	a := []domain.Listing{
		{VenueID: domain.VenueKalshi, ID: "k1", Title: "Lakers beat Celtics tonight", YesPrice: 0.10, NoPrice: 0.90, Active: true},
	}
	b := []domain.Listing{
		{VenueID: domain.VenuePolymarket, ID: "p1", Title: "Fed cuts rates March", YesPrice: 0.90, NoPrice: 0.10, Active: true},
	}

	if pairs := defaultMatcher(0.5).FindMatches(a, b); len(pairs) != 0 {
		t.Fatalf("expected no matches for disjoint vocabularies, got %d", len(pairs))
	}
}

func TestFindMatchesPreservesInsertionOrder(t *testing.T) {
	a := []domain.Listing{
		{VenueID: domain.VenueKalshi, ID: "k1", Title: "Bitcoin above 100k December", Active: true},
		{VenueID: domain.VenueKalshi, ID: "k2", Title: "Ethereum above 10k December", Active: true},
	}
	b := []domain.Listing{
		{VenueID: domain.VenuePolymarket, ID: "p1", Title: "Bitcoin above 100k in December", Active: true},
		{VenueID: domain.VenuePolymarket, ID: "p2", Title: "Ethereum above 10k in December", Active: true},
	}

	pairs := defaultMatcher(0.5).FindMatches(a, b)

	var got [][2]string
	for _, p := range pairs {
		got = append(got, [2]string{p.A.ID, p.B.ID})
	}
	want := [][2]string{{"k1", "p1"}, {"k2", "p2"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order mismatch got=%v want=%v", got, want)
	}
}

func TestFindMatchesIsIdempotent(t *testing.T) {
	a := []domain.Listing{
		{VenueID: domain.VenueKalshi, ID: "k1", Title: "Trump wins 2024 election", Active: true},
	}
	b := []domain.Listing{
		{VenueID: domain.VenuePolymarket, ID: "p1", Title: "Trump wins the 2024 election", Active: true},
	}

	m := defaultMatcher(0.5)
	first := m.FindMatches(a, b)
	second := m.FindMatches(a, b)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("matcher is not idempotent: %v vs %v", first, second)
	}
}

func TestFindMatchesEmptyInputs(t *testing.T) {
	m := defaultMatcher(0.5)
	if pairs := m.FindMatches(nil, nil); len(pairs) != 0 {
		t.Fatalf("expected empty result for empty inputs, got %d", len(pairs))
	}
}
