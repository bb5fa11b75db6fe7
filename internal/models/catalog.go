package models

import "strings"

// Genre is a catalog genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is a read-only catalog entry, decoded as the provider sends it.
//
// List endpoints fill GenreIDs; the details endpoint fills Genres and Runtime.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	Genres       []Genre `json:"genres"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
	Runtime      *int    `json:"runtime,omitempty"`
}

// GenreNames returns the names of m's genres in catalog order.
func (m Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// MoviePage is one page of a category listing or search.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Video is a trailer, teaser or clip attached to a movie.
type Video struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// URL returns a watch link for videos hosted on YouTube or Vimeo.
func (v Video) URL() string {
	switch v.Site {
	case "YouTube":
		return "https://www.youtube.com/watch?v=" + v.Key
	case "Vimeo":
		return "https://vimeo.com/" + v.Key
	default:
		return ""
	}
}

// CastMember is a credited actor.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// CrewMember is a credited crew member.
type CrewMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// Credits holds the cast and crew of a movie.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// MovieDetails is a [Movie] plus the sub-resources appended to the details request.
type MovieDetails struct {
	Movie
	Tagline string `json:"tagline"`
	Status  string `json:"status"`
	Videos  struct {
		Results []Video `json:"results"`
	} `json:"videos"`
	Credits         Credits   `json:"credits"`
	Recommendations MoviePage `json:"recommendations"`
}

// Trailer returns the first trailer with a playable URL, preferring official ones.
func (d MovieDetails) Trailer() (Video, bool) {
	var fallback *Video
	for i, v := range d.Videos.Results {
		if v.Type != "Trailer" || v.URL() == "" {
			continue
		}
		if v.Official {
			return v, true
		}
		if fallback == nil {
			fallback = &d.Videos.Results[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Video{}, false
}

// Directors returns the names of crew members with the Director job.
func (d MovieDetails) Directors() []string {
	var names []string
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			names = append(names, c.Name)
		}
	}
	return names
}

// TopCast returns at most n cast members in billing order.
func (d MovieDetails) TopCast(n int) []CastMember {
	if n >= len(d.Credits.Cast) {
		return d.Credits.Cast
	}
	return d.Credits.Cast[:n]
}

// Category selects a curated catalog listing.
type Category string

const (
	CategoryTrending Category = "trending"
	CategoryPopular  Category = "popular"
	CategoryTopRated Category = "topRated"
	CategoryUpcoming Category = "upcoming"
)

// Categories lists every category in home feed order.
func Categories() []Category {
	return []Category{CategoryTrending, CategoryPopular, CategoryTopRated, CategoryUpcoming}
}

// ParseCategory maps s to a [Category], case-insensitively and accepting "top_rated".
// Anything unrecognized is [CategoryPopular].
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trending":
		return CategoryTrending
	case "toprated", "top_rated", "top-rated":
		return CategoryTopRated
	case "upcoming":
		return CategoryUpcoming
	default:
		return CategoryPopular
	}
}

// Label is the display heading for c.
func (c Category) Label() string {
	switch c {
	case CategoryTrending:
		return "Trending Now"
	case CategoryTopRated:
		return "Top Rated"
	case CategoryUpcoming:
		return "Upcoming"
	default:
		return "Popular Movies"
	}
}
