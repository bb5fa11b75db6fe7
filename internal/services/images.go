package services

import (
	"strconv"
	"strings"
)

// ImageSize is a TMDB image width bucket.
type ImageSize string

const (
	PosterSmall    ImageSize = "w185"
	PosterMedium   ImageSize = "w342"
	PosterLarge    ImageSize = "w500"
	BackdropSmall  ImageSize = "w300"
	BackdropMedium ImageSize = "w780"
	BackdropLarge  ImageSize = "w1280"
	ProfileSmall   ImageSize = "w185"
	SizeOriginal   ImageSize = "original"

	tmdbImageBaseURL = "https://image.tmdb.org/t/p"

	// PlaceholderPoster is returned for movies without artwork.
	PlaceholderPoster = "/placeholder-poster.jpg"
)

// Images builds CDN URLs from the relative paths in catalog responses.
type Images struct {
	baseURL string
}

// NewImages creates an [Images] for baseURL, defaulting to the TMDB image CDN.
func NewImages(baseURL string) Images {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = tmdbImageBaseURL
	}
	return Images{baseURL: baseURL}
}

// URL joins path and size. An empty path returns [PlaceholderPoster]; an empty size uses [PosterMedium].
func (i Images) URL(path string, size ImageSize) string {
	if path == "" {
		return PlaceholderPoster
	}
	if size == "" {
		size = PosterMedium
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return i.baseURL + "/" + string(size) + path
}

// Poster returns a poster URL at size.
func (i Images) Poster(posterPath string, size ImageSize) string {
	return i.URL(posterPath, size)
}

// Backdrop returns a backdrop URL, defaulting to [BackdropLarge].
func (i Images) Backdrop(backdropPath string, size ImageSize) string {
	if size == "" {
		size = BackdropLarge
	}
	return i.URL(backdropPath, size)
}

// IsPlaceholder reports whether url is the placeholder returned for missing artwork.
func IsPlaceholder(url string) bool {
	return url == PlaceholderPoster
}

// MovieURL is the public TMDB page for a movie.
func MovieURL(movieID int) string {
	return "https://www.themoviedb.org/movie/" + strconv.Itoa(movieID)
}
