package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cinequery/cinequery/internal/schema"
)

var (
	genres     = []string{"Action", "Drama", "Comedy", "Thriller", "Fantasy", "Historical", "Biography", "Sci-Fi", "Romance"}
	languages  = []string{"Hindi", "English", "Marathi", "Tamil", "Telugu"}
	platforms  = []string{"Netflix", "Amazon Prime", "Disney+ Hotstar", "Sony LIV", "Zee5"}
	directors  = []string{"Kabir Khan", "Zoya Akhtar", "Rajkumar Hirani", "Anurag Kashyap", "Sanjay Leela Bhansali", "Hansal Mehta", "Meghna Gulzar", "Nitesh Tiwari"}
	studios    = []string{"Yash Raj Films", "Excel Entertainment", "Dharma Productions", "Red Chillies Entertainment", "T-Series", "Applause Entertainment"}
	actors     = []string{"Ranveer Singh", "Alia Bhatt", "Aamir Khan", "Deepika Padukone", "Pankaj Tripathi", "Vidya Balan", "Rajkummar Rao", "Taapsee Pannu", "Manoj Bajpayee", "Kangana Ranaut"}
	titleHeads = []string{"Mission", "Shadow", "Raja", "Dil", "Kahaani", "Sultan", "Gully", "Tanhaji", "Sacred", "Jawan"}
	titleTails = []string{"Returns", "of Mumbai", "Express", "Chronicles", "1947", "Unbound", "Ki Kahani", "Rising"}
)

// Generator produces a reproducible sequence of catalogue rows for a seed.
type Generator struct {
	rnd      *rand.Rand
	sequence int
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

func (g *Generator) Next() schema.Movie {
	g.sequence++
	webSeries := g.rnd.Intn(100) < 30

	movie := schema.Movie{
		Title:               fmt.Sprintf("%s %s %d", pickOne(g.rnd, titleHeads), pickOne(g.rnd, titleTails), g.sequence),
		Type:                "Movie",
		ReleaseYear:         int64(2010 + g.rnd.Intn(15)),
		Genre:               pickOne(g.rnd, genres),
		Director:            pickOne(g.rnd, directors),
		ProductionHouse:     pickOne(g.rnd, studios),
		LeadActors:          pickOne(g.rnd, actors) + ", " + pickOne(g.rnd, actors),
		Language:            pickOne(g.rnd, languages),
		BudgetMillions:      round1(40 + g.rnd.Float64()*1800),
		OTTPlatform:         pickOne(g.rnd, platforms),
		IMDbRating:          round1(4 + g.rnd.Float64()*5.5),
		AudienceScore:       int64(50 + g.rnd.Intn(50)),
		CriticsScore:        int64(40 + g.rnd.Intn(60)),
		AwardsNominations:   int64(g.rnd.Intn(30)),
		SocialMediaMentions: int64(5000 + g.rnd.Intn(195000)),
		UserReviewsCount:    int64(1000 + g.rnd.Intn(49000)),
	}
	movie.AwardsWon = int64(g.rnd.Intn(int(movie.AwardsNominations) + 1))
	viewership := round1(20 + g.rnd.Float64()*400)
	movie.ViewershipHours = &viewership

	if webSeries {
		movie.Type = "Web Series"
		episodes := int64(6 + g.rnd.Intn(15))
		movie.NoOfEpisodes = &episodes
		movie.BoxOfficeMillions = round1(movie.BudgetMillions * (0.5 + g.rnd.Float64()))
	} else {
		runtime := int64(95 + g.rnd.Intn(80))
		movie.RuntimeMinutes = &runtime
		movie.BoxOfficeMillions = round1(movie.BudgetMillions * (0.3 + g.rnd.Float64()*4))
	}
	return movie
}

func (g *Generator) Generate(n int) []schema.Movie {
	movies := make([]schema.Movie, 0, n)
	for i := 0; i < n; i++ {
		movies = append(movies, g.Next())
	}
	return movies
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
