package schema

import "strings"

type ValueType string

const (
	TypeString  ValueType = "String"
	TypeInteger ValueType = "Integer"
	TypeFloat   ValueType = "Float"
)

// Column documents one column for the model: its name, its value type and
// the domain of values it holds.
type Column struct {
	Name        string    `json:"name"`
	Type        ValueType `json:"type"`
	Description string    `json:"description"`
}

type Table struct {
	Name    string   `json:"name"`
	Subject string   `json:"subject"`
	Columns []Column `json:"columns"`
}

func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, column := range t.Columns {
		names = append(names, column.Name)
	}
	return names
}

func (t Table) Column(name string) (Column, bool) {
	for _, column := range t.Columns {
		if strings.EqualFold(column.Name, name) {
			return column, true
		}
	}
	return Column{}, false
}

const MoviesTable = "movies"

const (
	ColumnTitle              = "Title"
	ColumnType               = "Type"
	ColumnReleaseYear        = "Release_Year"
	ColumnGenre              = "Genre"
	ColumnDirector           = "Director"
	ColumnProductionHouse    = "Production_House"
	ColumnLeadActors         = "Lead_Actors"
	ColumnLanguage           = "Language"
	ColumnBudgetMillions     = "Budget_Millions"
	ColumnBoxOfficeMillions  = "Box_Office_Millions"
	ColumnOTTPlatform        = "OTT_Platform"
	ColumnRuntimeMinutes     = "Runtime_Minutes"
	ColumnNoOfEpisodes       = "No_of_Episodes"
	ColumnIMDbRating         = "IMDb_Rating"
	ColumnAudienceScore      = "Audience_Score"
	ColumnCriticsScore       = "Critics_Score"
	ColumnAwardsNominations  = "Awards_Nominations"
	ColumnAwardsWon          = "Awards_Won"
	ColumnSocialMediaMention = "Social_Media_Mentions"
	ColumnUserReviewsCount   = "User_Reviews_Count"
	ColumnViewershipHours    = "Viewership_Hours_Million"
)

// Movies returns the documented description of the movies table. The
// returned value is a fresh copy on every call.
func Movies() Table {
	return Table{
		Name:    MoviesTable,
		Subject: "Bollywood movies and web series",
		Columns: []Column{
			{ColumnTitle, TypeString, `The exact name of the Bollywood movie or web series (e.g., "Padmaavat", "Dangal").`},
			{ColumnType, TypeString, `Specifies whether the entry is a movie or a web series. Possible values: "Movie", "Web Series".`},
			{ColumnReleaseYear, TypeInteger, `The year the movie or series was released (e.g., 2015, 2019).`},
			{ColumnGenre, TypeString, `The main genre or category of the movie or series. Possible values: "Action", "Drama", "Comedy", "Thriller", "Fantasy", "Historical", "Biography", "Sci-Fi", "Romance".`},
			{ColumnDirector, TypeString, `Name of the director who directed the movie or series (e.g., "Kabir Khan", "Zoya Akhtar").`},
			{ColumnProductionHouse, TypeString, `The name of the production company that produced the movie or series (e.g., "Yash Raj Films", "Excel Entertainment").`},
			{ColumnLeadActors, TypeString, `Names of the lead actors, separated by commas (e.g., "Ranveer Singh, Alia Bhatt").`},
			{ColumnLanguage, TypeString, `Primary language in which the movie or series was released. Possible values: "Hindi", "English", "Marathi", "Tamil", "Telugu".`},
			{ColumnBudgetMillions, TypeFloat, `Production budget in millions of INR, representing the investment made in the movie or series (e.g., 70.0, 150.5).`},
			{ColumnBoxOfficeMillions, TypeFloat, `Box office revenue in millions of INR for movies. For web series, this may be an estimate based on views (e.g., 238.0, 915.0).`},
			{ColumnOTTPlatform, TypeString, `The OTT platform where the movie or series is available for streaming. Possible values: "Netflix", "Amazon Prime", "Disney+ Hotstar", "Sony LIV", "Zee5".`},
			{ColumnRuntimeMinutes, TypeInteger, `Total runtime in minutes. Applicable to movies only (e.g., 120, 153).`},
			{ColumnNoOfEpisodes, TypeInteger, `Number of episodes in the series. Applicable to web series only (e.g., 10, 12).`},
			{ColumnIMDbRating, TypeFloat, `The IMDb rating out of 10, representing public reception and popularity (e.g., 8.4, 7.5).`},
			{ColumnAudienceScore, TypeInteger, `Average audience score percentage based on reviews (e.g., 85, 92).`},
			{ColumnCriticsScore, TypeInteger, `Average critics score percentage based on reviews from critics (e.g., 80, 88).`},
			{ColumnAwardsNominations, TypeInteger, `Total number of award nominations the movie or series received (e.g., 14, 20).`},
			{ColumnAwardsWon, TypeInteger, `Total number of awards won (e.g., 5, 7).`},
			{ColumnSocialMediaMention, TypeInteger, `The number of mentions across social media platforms within the first six months post-release (e.g., 78000, 92000).`},
			{ColumnUserReviewsCount, TypeInteger, `The total number of user reviews available on platforms like IMDb (e.g., 22000, 15000).`},
			{ColumnViewershipHours, TypeFloat, `Total viewership hours in millions within the first month post-release, indicative of popularity (e.g., 150.0, 200.5).`},
		},
	}
}
