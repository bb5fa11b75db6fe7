// TMDB API implementation of [Catalog]
//
// Response shapes follow https://developer.themoviedb.org/reference
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

const (
	tmdbBaseURL  = "https://api.themoviedb.org/3"
	tmdbLanguage = "en-US"
	tmdbAppend   = "videos,credits,recommendations"
)

var categoryPaths = map[models.Category][]string{
	models.CategoryTrending: {"trending", "movie", "week"},
	models.CategoryPopular:  {"movie", "popular"},
	models.CategoryTopRated: {"movie", "top_rated"},
	models.CategoryUpcoming: {"movie", "upcoming"},
}

// TMDBOptions configures a [TMDBService].
type TMDBOptions struct {
	APIKey          string
	ReadAccessToken string
	BaseURL         string
	Language        string
	RateLimit       float64 // requests per second; zero or less disables pacing
	Timeout         time.Duration
	HTTPClient      *http.Client
}

// TMDBOptionsFromConfig maps the [tmdb] config section to [TMDBOptions].
func TMDBOptionsFromConfig(cfg shared.TMDBConfig) TMDBOptions {
	return TMDBOptions{
		APIKey:          cfg.APIKey,
		ReadAccessToken: cfg.ReadAccessToken,
		BaseURL:         cfg.BaseURL,
		Language:        cfg.Language,
		RateLimit:       cfg.RateLimit,
		Timeout:         cfg.Timeout(),
	}
}

// TMDBService reads movies from The Movie Database.
type TMDBService struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewTMDBService creates a [TMDBService]. Either an API key or a read access token is required.
//
// When a read access token is set, requests are sent through an [oauth2.Transport] carrying it as a Bearer token.
func NewTMDBService(opts TMDBOptions) (*TMDBService, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	token := strings.TrimSpace(opts.ReadAccessToken)
	if apiKey == "" && token == "" {
		return nil, shared.ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = tmdbBaseURL
	}
	language := opts.Language
	if language == "" {
		language = tmdbLanguage
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		bearer := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
		bearer.Timeout = client.Timeout
		client = bearer
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &TMDBService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		language:   language,
		httpClient: client,
		limiter:    limiter,
	}, nil
}

// Name returns the provider name.
func (s *TMDBService) Name() string {
	return "TMDB"
}

// ListByCategory calls the listing endpoint for category; unknown categories use the popular listing.
func (s *TMDBService) ListByCategory(ctx context.Context, category models.Category, page int) (models.MoviePage, error) {
	segments, ok := categoryPaths[category]
	if !ok {
		segments = categoryPaths[models.CategoryPopular]
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(clampPage(page)))

	var result models.MoviePage
	if err := s.doRequest(ctx, segments, params, &result); err != nil {
		return models.MoviePage{}, err
	}
	return result, nil
}

// Details calls GET /movie/{id} with videos, credits and recommendations appended.
func (s *TMDBService) Details(ctx context.Context, movieID int) (models.MovieDetails, error) {
	if movieID <= 0 {
		return models.MovieDetails{}, fmt.Errorf("%w: movie id must be positive, got %d", shared.ErrValidation, movieID)
	}

	params := url.Values{}
	params.Set("append_to_response", tmdbAppend)

	var result models.MovieDetails
	err := s.doRequest(ctx, []string{"movie", strconv.Itoa(movieID)}, params, &result)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return models.MovieDetails{}, fmt.Errorf("%w: movie %d", shared.ErrNotFound, movieID)
	}
	if err != nil {
		return models.MovieDetails{}, err
	}
	return result, nil
}

// Search calls GET /search/movie.
func (s *TMDBService) Search(ctx context.Context, query string, page int) (models.MoviePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.MoviePage{}, fmt.Errorf("%w: search query is required", shared.ErrValidation)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(clampPage(page)))
	params.Set("include_adult", "false")

	var result models.MoviePage
	if err := s.doRequest(ctx, []string{"search", "movie"}, params, &result); err != nil {
		return models.MoviePage{}, err
	}
	return result, nil
}

// Genres calls GET /genre/movie/list.
func (s *TMDBService) Genres(ctx context.Context) ([]models.Genre, error) {
	var result struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := s.doRequest(ctx, []string{"genre", "movie", "list"}, url.Values{}, &result); err != nil {
		return nil, err
	}
	return result.Genres, nil
}

// doRequest waits for the limiter, performs a GET against the joined path and decodes the JSON body into result.
func (s *TMDBService) doRequest(ctx context.Context, segments []string, params url.Values, result any) error {
	endpoint, err := url.JoinPath(s.baseURL, segments...)
	if err != nil {
		return fmt.Errorf("failed to build url: %w", err)
	}

	if s.apiKey != "" {
		params.Set("api_key", s.apiKey)
	}
	params.Set("language", s.language)

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			StatusMessage string `json:"status_message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.StatusMessage}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", shared.ErrUpstream, err)
	}

	return nil
}
