package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	tu "github.com/desertthunder/marquee/internal/testing"
)

var _ Catalog = (*TMDBService)(nil)

func newTestService(t *testing.T, handler http.HandlerFunc) (*TMDBService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewTMDBService(TMDBOptions{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return srv, server
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestTMDBService(t *testing.T) {
	ctx := context.Background()

	t.Run("New", func(t *testing.T) {
		t.Run("Requires Credentials", func(t *testing.T) {
			if _, err := NewTMDBService(TMDBOptions{}); !errors.Is(err, shared.ErrMissingAPIKey) {
				t.Errorf("expected ErrMissingAPIKey, got %v", err)
			}
		})

		t.Run("Defaults", func(t *testing.T) {
			srv, err := NewTMDBService(TMDBOptions{APIKey: "k"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if srv.baseURL != tmdbBaseURL || srv.language != "en-US" {
				t.Errorf("unexpected defaults %s %s", srv.baseURL, srv.language)
			}
			if srv.limiter != nil {
				t.Error("limiter should be disabled without a rate limit")
			}
			if srv.Name() != "TMDB" {
				t.Errorf("unexpected name %s", srv.Name())
			}
		})

		t.Run("From Config", func(t *testing.T) {
			opts := TMDBOptionsFromConfig(shared.DefaultConfig().TMDB)
			if opts.BaseURL != tmdbBaseURL || opts.RateLimit != 20 || opts.Timeout != 15*time.Second {
				t.Errorf("unexpected options %+v", opts)
			}
		})
	})

	t.Run("ListByCategory", func(t *testing.T) {
		tc := []struct {
			category models.Category
			path     string
		}{
			{category: models.CategoryTrending, path: "/trending/movie/week"},
			{category: models.CategoryPopular, path: "/movie/popular"},
			{category: models.CategoryTopRated, path: "/movie/top_rated"},
			{category: models.CategoryUpcoming, path: "/movie/upcoming"},
			{category: models.Category("bogus"), path: "/movie/popular"},
		}

		for _, tt := range tc {
			t.Run(string(tt.category), func(t *testing.T) {
				srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
					if r.URL.Path != tt.path {
						t.Errorf("expected path %s, got %s", tt.path, r.URL.Path)
					}
					q := r.URL.Query()
					if q.Get("api_key") != "test-key" {
						t.Errorf("expected api_key, got %q", q.Get("api_key"))
					}
					if q.Get("page") != "2" || q.Get("language") != "en-US" {
						t.Errorf("unexpected query %s", r.URL.RawQuery)
					}
					writeJSON(w, http.StatusOK, map[string]any{
						"page":          2,
						"results":       []map[string]any{{"id": 603, "title": "The Matrix", "genre_ids": []int{28}}},
						"total_pages":   10,
						"total_results": 200,
					})
				})

				page, err := srv.ListByCategory(ctx, tt.category, 2)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if page.TotalPages != 10 || page.TotalResults != 200 || len(page.Results) != 1 {
					t.Errorf("unexpected page %+v", page)
				}
				if page.Results[0].Title != "The Matrix" || page.Results[0].GenreIDs[0] != 28 {
					t.Errorf("unexpected movie %+v", page.Results[0])
				}
			})
		}

		t.Run("Clamps Page", func(t *testing.T) {
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("page"); got != "1" {
					t.Errorf("expected page 1, got %s", got)
				}
				writeJSON(w, http.StatusOK, map[string]any{"page": 1, "results": []any{}})
			})
			if _, err := srv.ListByCategory(ctx, models.CategoryPopular, 0); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})

		t.Run("Upstream Error With Message", func(t *testing.T) {
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"status_code": 7, "status_message": "Invalid API key"})
			})

			_, err := srv.ListByCategory(ctx, models.CategoryPopular, 1)
			if !errors.Is(err, shared.ErrUpstream) {
				t.Fatalf("expected ErrUpstream, got %v", err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != 401 || apiErr.Message != "Invalid API key" {
				t.Errorf("unexpected api error %+v", apiErr)
			}
		})

		t.Run("404 On Listing Is Upstream", func(t *testing.T) {
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			})
			_, err := srv.ListByCategory(ctx, models.CategoryPopular, 1)
			if !errors.Is(err, shared.ErrUpstream) || errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrUpstream only, got %v", err)
			}
		})

		t.Run("Decode Error", func(t *testing.T) {
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				io.WriteString(w, "{not json")
			})
			if _, err := srv.ListByCategory(ctx, models.CategoryPopular, 1); !errors.Is(err, shared.ErrUpstream) {
				t.Errorf("expected ErrUpstream, got %v", err)
			}
		})
	})

	t.Run("Details", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/movie/603" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("append_to_response"); got != "videos,credits,recommendations" {
					t.Errorf("unexpected append_to_response %q", got)
				}
				writeJSON(w, http.StatusOK, map[string]any{
					"id":       603,
					"title":    "The Matrix",
					"runtime":  136,
					"genres":   []map[string]any{{"id": 28, "name": "Action"}},
					"videos":   map[string]any{"results": []map[string]any{{"key": "abc", "site": "YouTube", "type": "Trailer"}}},
					"credits":  map[string]any{"cast": []map[string]any{{"name": "Keanu Reeves"}}},
					"tagline":  "Welcome to the Real World.",
					"status":   "Released",
					"homepage": "ignored",
				})
			})

			d, err := srv.Details(ctx, 603)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Runtime == nil || *d.Runtime != 136 || len(d.Genres) != 1 {
				t.Errorf("unexpected details %+v", d.Movie)
			}
			if _, ok := d.Trailer(); !ok {
				t.Error("expected a trailer")
			}
			if len(d.Credits.Cast) != 1 || d.Tagline == "" {
				t.Errorf("unexpected credits/tagline %+v", d)
			}
		})

		t.Run("Not Found", func(t *testing.T) {
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusNotFound, map[string]any{"status_code": 34, "status_message": "The resource you requested could not be found."})
			})
			if _, err := srv.Details(ctx, 999999); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			})
			_, err := srv.Details(ctx, 1)
			if !errors.Is(err, shared.ErrUpstream) || errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrUpstream, got %v", err)
			}
		})

		t.Run("Invalid ID", func(t *testing.T) {
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected")
			})
			if _, err := srv.Details(ctx, 0); !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search/movie" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("query"); got != "blade runner" {
					t.Errorf("unexpected query %q", got)
				}
				writeJSON(w, http.StatusOK, map[string]any{
					"page": 1, "results": []map[string]any{{"id": 78}}, "total_pages": 1, "total_results": 1,
				})
			})

			page, err := srv.Search(ctx, "  blade runner ", 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.TotalResults != 1 || page.Results[0].ID != 78 {
				t.Errorf("unexpected page %+v", page)
			}
		})

		t.Run("Blank Query", func(t *testing.T) {
			var calls atomic.Int32
			srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			})
			if _, err := srv.Search(ctx, "   ", 1); !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if calls.Load() != 0 {
				t.Error("blank query should not reach the provider")
			}
		})
	})

	t.Run("Genres", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/genre/movie/list" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			writeJSON(w, http.StatusOK, map[string]any{"genres": []map[string]any{{"id": 28, "name": "Action"}, {"id": 18, "name": "Drama"}}})
		})

		genres, err := srv.Genres(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(genres) != 2 || genres[1].Name != "Drama" {
			t.Errorf("unexpected genres %+v", genres)
		}
	})

	t.Run("Bearer Token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer v4-token" {
				t.Errorf("expected bearer header, got %q", got)
			}
			if r.URL.Query().Has("api_key") {
				t.Error("api_key should be omitted when only a token is configured")
			}
			writeJSON(w, http.StatusOK, map[string]any{"genres": []any{}})
		}))
		defer server.Close()

		srv, err := NewTMDBService(TMDBOptions{ReadAccessToken: "v4-token", BaseURL: server.URL})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		if _, err := srv.Genres(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Transport Error", func(t *testing.T) {
		srv, err := NewTMDBService(TMDBOptions{
			APIKey:     "k",
			BaseURL:    "http://catalog.invalid",
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))},
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		if _, err := srv.Genres(ctx); !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("Body Read Error", func(t *testing.T) {
		srv, err := NewTMDBService(TMDBOptions{
			APIKey:  "k",
			BaseURL: "http://catalog.invalid",
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Body:       &tu.FCloser{},
				Header:     make(http.Header),
			}, nil)},
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		if _, err := srv.Genres(ctx); !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("Rate Limited Wait Honors Context", func(t *testing.T) {
		srv, err := NewTMDBService(TMDBOptions{APIKey: "k", BaseURL: "http://catalog.invalid", RateLimit: 0.001})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		srv.limiter.Allow()

		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		if _, err := srv.Genres(cctx); err == nil {
			t.Error("expected limiter wait to fail")
		}
	})
}

func TestImages(t *testing.T) {
	images := NewImages("")

	tc := []struct {
		name string
		got  string
		want string
	}{
		{name: "poster", got: images.Poster("/abc.jpg", PosterLarge), want: "https://image.tmdb.org/t/p/w500/abc.jpg"},
		{name: "default size", got: images.Poster("/abc.jpg", ""), want: "https://image.tmdb.org/t/p/w342/abc.jpg"},
		{name: "backdrop", got: images.Backdrop("/bg.jpg", ""), want: "https://image.tmdb.org/t/p/w1280/bg.jpg"},
		{name: "original", got: images.URL("/x.png", SizeOriginal), want: "https://image.tmdb.org/t/p/original/x.png"},
		{name: "missing path", got: images.Poster("", PosterSmall), want: PlaceholderPoster},
		{name: "custom base", got: NewImages("http://cdn.local/").URL("y.jpg", BackdropSmall), want: "http://cdn.local/w300/y.jpg"},
		{name: "movie page", got: MovieURL(603), want: "https://www.themoviedb.org/movie/603"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}

	if !IsPlaceholder(images.Backdrop("", "")) {
		t.Error("missing backdrop should be the placeholder")
	}
}
