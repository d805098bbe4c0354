package schema

import "strconv"

// Movie is one record row of the movies table. RuntimeMinutes is set for
// movies and NoOfEpisodes for web series; nothing enforces that.
type Movie struct {
	Title               string   `parquet:"Title"`
	Type                string   `parquet:"Type"`
	ReleaseYear         int64    `parquet:"Release_Year"`
	Genre               string   `parquet:"Genre"`
	Director            string   `parquet:"Director"`
	ProductionHouse     string   `parquet:"Production_House"`
	LeadActors          string   `parquet:"Lead_Actors"`
	Language            string   `parquet:"Language"`
	BudgetMillions      float64  `parquet:"Budget_Millions"`
	BoxOfficeMillions   float64  `parquet:"Box_Office_Millions"`
	OTTPlatform         string   `parquet:"OTT_Platform"`
	RuntimeMinutes      *int64   `parquet:"Runtime_Minutes,optional"`
	NoOfEpisodes        *int64   `parquet:"No_of_Episodes,optional"`
	IMDbRating          float64  `parquet:"IMDb_Rating"`
	AudienceScore       int64    `parquet:"Audience_Score"`
	CriticsScore        int64    `parquet:"Critics_Score"`
	AwardsNominations   int64    `parquet:"Awards_Nominations"`
	AwardsWon           int64    `parquet:"Awards_Won"`
	SocialMediaMentions int64    `parquet:"Social_Media_Mentions"`
	UserReviewsCount    int64    `parquet:"User_Reviews_Count"`
	ViewershipHours     *float64 `parquet:"Viewership_Hours_Million,optional"`
}

// Values returns the row in Movies() column order. Absent optional values
// are nil.
func (m Movie) Values() []any {
	return []any{
		m.Title,
		m.Type,
		m.ReleaseYear,
		m.Genre,
		m.Director,
		m.ProductionHouse,
		m.LeadActors,
		m.Language,
		m.BudgetMillions,
		m.BoxOfficeMillions,
		m.OTTPlatform,
		optionalInt(m.RuntimeMinutes),
		optionalInt(m.NoOfEpisodes),
		m.IMDbRating,
		m.AudienceScore,
		m.CriticsScore,
		m.AwardsNominations,
		m.AwardsWon,
		m.SocialMediaMentions,
		m.UserReviewsCount,
		optionalFloat(m.ViewershipHours),
	}
}

// Record renders the row as CSV fields in Movies() column order.
func (m Movie) Record() []string {
	values := m.Values()
	record := make([]string, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case nil:
			record[i] = ""
		case string:
			record[i] = typed
		case int64:
			record[i] = strconv.FormatInt(typed, 10)
		case float64:
			record[i] = strconv.FormatFloat(typed, 'f', -1, 64)
		}
	}
	return record
}

func optionalInt(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func optionalFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}
