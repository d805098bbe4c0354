package dataset

import (
	"reflect"
	"testing"
)

func TestGeneratorDeterministicForSeed(t *testing.T) {
	g1 := NewGenerator(42)
	g2 := NewGenerator(42)

	for i := 0; i < 20; i++ {
		m1 := g1.Next()
		m2 := g2.Next()
		if !reflect.DeepEqual(m1, m2) {
			t.Fatalf("movie %d differs: %#v vs %#v", i, m1, m2)
		}
	}
}

func TestGeneratorSetsRuntimeOrEpisodesByType(t *testing.T) {
	movies := NewGenerator(7).Generate(200)

	var seenMovie, seenSeries bool
	for i, movie := range movies {
		switch movie.Type {
		case "Movie":
			seenMovie = true
			if movie.RuntimeMinutes == nil || movie.NoOfEpisodes != nil {
				t.Fatalf("movie %d: runtime=%v episodes=%v", i, movie.RuntimeMinutes, movie.NoOfEpisodes)
			}
		case "Web Series":
			seenSeries = true
			if movie.NoOfEpisodes == nil || movie.RuntimeMinutes != nil {
				t.Fatalf("series %d: runtime=%v episodes=%v", i, movie.RuntimeMinutes, movie.NoOfEpisodes)
			}
		default:
			t.Fatalf("movie %d has type %q", i, movie.Type)
		}
		if movie.AwardsWon > movie.AwardsNominations {
			t.Fatalf("movie %d won %d of %d nominations", i, movie.AwardsWon, movie.AwardsNominations)
		}
		if movie.IMDbRating < 4 || movie.IMDbRating > 9.5 {
			t.Fatalf("movie %d rating = %v", i, movie.IMDbRating)
		}
	}
	if !seenMovie || !seenSeries {
		t.Fatalf("expected both types, movie=%v series=%v", seenMovie, seenSeries)
	}
}

func TestGeneratorTitlesAreUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, movie := range NewGenerator(3).Generate(100) {
		if _, ok := seen[movie.Title]; ok {
			t.Fatalf("duplicate title %q", movie.Title)
		}
		seen[movie.Title] = struct{}{}
	}
}
