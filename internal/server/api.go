package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/stores"
	"github.com/desertthunder/marquee/internal/tasks"
)

const maxBodyBytes = 1 << 20

// API serves the session, catalog and watchlist endpoints over the shared stores.
type API struct {
	session     *stores.SessionStore
	collections *stores.CollectionStore
	catalog     services.Catalog
	engine      *tasks.Engine
	images      services.Images
	logger      *log.Logger
	started     time.Time
}

// NewAPI creates an [API]. A nil catalog makes the movie endpoints answer 503.
func NewAPI(session *stores.SessionStore, collections *stores.CollectionStore, catalog services.Catalog, images services.Images, logger *log.Logger) *API {
	return &API{
		session:     session,
		collections: collections,
		catalog:     catalog,
		engine:      tasks.NewEngine(catalog, collections, tasks.WithImages(images), tasks.WithLogger(logger)),
		images:      images,
		logger:      logger,
		started:     time.Now(),
	}
}

// Mount registers every endpoint on r.
func (a *API) Mount(r Router) {
	r.Handler(healthHandler{started: a.started})

	r.Handle("GET", "/api/session", http.HandlerFunc(a.getSession))
	r.Handle("POST", "/api/session/login", http.HandlerFunc(a.login))
	r.Handle("POST", "/api/session/register", http.HandlerFunc(a.register))
	r.Handle("POST", "/api/session/logout", http.HandlerFunc(a.logout))

	r.Handle("GET", "/api/feed", http.HandlerFunc(a.feed))
	r.Handle("GET", "/api/movies", http.HandlerFunc(a.listMovies))
	r.Handle("GET", "/api/movies/search", http.HandlerFunc(a.searchMovies))
	r.Handle("GET", "/api/movies/{id}", http.HandlerFunc(a.movieDetails))
	r.Handle("GET", "/api/genres", http.HandlerFunc(a.genres))

	r.Handle("GET", "/api/watchlists", http.HandlerFunc(a.listWatchlists))
	r.Handle("GET", "/api/watchlists/public", http.HandlerFunc(a.publicWatchlists))
	r.Handle("GET", "/api/watchlists/current", http.HandlerFunc(a.currentWatchlist))
	r.Handle("POST", "/api/watchlists", http.HandlerFunc(a.createWatchlist))
	r.Handle("GET", "/api/watchlists/{id}", http.HandlerFunc(a.getWatchlist))
	r.Handle("PATCH", "/api/watchlists/{id}", http.HandlerFunc(a.updateWatchlist))
	r.Handle("DELETE", "/api/watchlists/{id}", http.HandlerFunc(a.deleteWatchlist))
	r.Handle("POST", "/api/watchlists/{id}/current", http.HandlerFunc(a.selectWatchlist))
	r.Handle("POST", "/api/watchlists/{id}/movies", http.HandlerFunc(a.addMovie))
	r.Handle("DELETE", "/api/watchlists/{id}/movies/{movieId}", http.HandlerFunc(a.removeMovie))

	r.Handle("GET", "/api/admin/stats", http.HandlerFunc(a.stats))
}

type healthHandler struct {
	started time.Time
}

func (h healthHandler) Routes() []string {
	return []string{"GET /api/health"}
}

func (h healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// SessionResponse is the body of the session endpoints.
type SessionResponse struct {
	User            *models.Identity `json:"user"`
	IsAuthenticated bool             `json:"isAuthenticated"`
	Pending         bool             `json:"pending"`
}

func sessionResponse(st stores.SessionState) SessionResponse {
	return SessionResponse{User: st.Identity, IsAuthenticated: st.IsAuthenticated(), Pending: st.Pending}
}

// MovieView is a catalog movie with resolved image URLs.
type MovieView struct {
	models.Movie
	PosterURL   string `json:"posterUrl"`
	BackdropURL string `json:"backdropUrl"`
	Year        string `json:"year"`
}

func (a *API) movieView(m models.Movie) MovieView {
	return MovieView{
		Movie:       m,
		PosterURL:   a.images.Poster(m.PosterPath, services.PosterMedium),
		BackdropURL: a.images.Backdrop(m.BackdropPath, ""),
		Year:        shared.ReleaseYear(m.ReleaseDate),
	}
}

// PageView is a [models.MoviePage] with resolved image URLs.
type PageView struct {
	Page         int         `json:"page"`
	Results      []MovieView `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

func (a *API) pageView(p models.MoviePage) PageView {
	out := PageView{Page: p.Page, TotalPages: p.TotalPages, TotalResults: p.TotalResults, Results: make([]MovieView, 0, len(p.Results))}
	for _, m := range p.Results {
		out.Results = append(out.Results, a.movieView(m))
	}
	return out
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", shared.ErrValidation, err)
	}
	return nil
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// requireUser returns the current identity or [shared.ErrNotAuthenticated].
func (a *API) requireUser() (models.Identity, error) {
	identity, ok := a.session.Current()
	if !ok {
		return models.Identity{}, shared.ErrNotAuthenticated
	}
	return identity, nil
}

// visible reports whether identity may read c.
func visible(c models.Collection, identity *models.Identity) bool {
	if c.IsPublic {
		return true
	}
	return identity != nil && (identity.ID == c.OwnerID || identity.IsAdmin)
}

// ownedCollection resolves the path id to a collection the current user may modify.
//
// Private collections of other users are reported as not found.
func (a *API) ownedCollection(r *http.Request) (models.Collection, error) {
	identity, err := a.requireUser()
	if err != nil {
		return models.Collection{}, err
	}

	id := r.PathValue("id")
	c, ok := a.collections.Find(id)
	if !ok || !visible(c, &identity) {
		return models.Collection{}, fmt.Errorf("%w: watchlist %s", shared.ErrNotFound, id)
	}
	if c.OwnerID != identity.ID && !identity.IsAdmin {
		return models.Collection{}, fmt.Errorf("%w: watchlist %s belongs to another user", shared.ErrForbidden, id)
	}
	return c, nil
}

func (a *API) requireCatalog() error {
	if a.catalog == nil {
		return fmt.Errorf("%w: catalog is not configured (set TMDB_API_KEY)", shared.ErrServiceUnavailable)
	}
	return nil
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse(a.session.State()))
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if _, err := a.session.Login(r.Context(), body.Email, body.Password); err != nil {
		writeError(w, err)
		return
	}
	a.collections.SetCurrent("")
	writeJSON(w, http.StatusOK, sessionResponse(a.session.State()))
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var body stores.Registration
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if _, err := a.session.Register(r.Context(), body); err != nil {
		writeError(w, err)
		return
	}
	a.collections.SetCurrent("")
	writeJSON(w, http.StatusCreated, sessionResponse(a.session.State()))
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	a.session.Logout(r.Context())
	a.collections.SetCurrent("")
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) feed(w http.ResponseWriter, r *http.Request) {
	if err := a.requireCatalog(); err != nil {
		writeError(w, err)
		return
	}

	feed, err := a.engine.HomeFeed(r.Context(), pageParam(r))
	if err != nil {
		writeError(w, err)
		return
	}

	type row struct {
		Category models.Category `json:"category"`
		Label    string          `json:"label"`
		Movies   []MovieView     `json:"movies"`
		Error    string          `json:"error,omitempty"`
	}
	rows := make([]row, 0, len(feed.Rows))
	for _, fr := range feed.Rows {
		out := row{Category: fr.Category, Label: fr.Label, Movies: a.pageView(fr.Page).Results}
		if fr.Err != nil {
			out.Error = fr.Err.Error()
		}
		rows = append(rows, out)
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (a *API) listMovies(w http.ResponseWriter, r *http.Request) {
	if err := a.requireCatalog(); err != nil {
		writeError(w, err)
		return
	}

	category := models.ParseCategory(r.URL.Query().Get("category"))
	page, err := a.catalog.ListByCategory(r.Context(), category, pageParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.pageView(page))
}

func (a *API) searchMovies(w http.ResponseWriter, r *http.Request) {
	if err := a.requireCatalog(); err != nil {
		writeError(w, err)
		return
	}

	page, err := a.catalog.Search(r.Context(), r.URL.Query().Get("q"), pageParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.pageView(page))
}

func (a *API) movieDetails(w http.ResponseWriter, r *http.Request) {
	if err := a.requireCatalog(); err != nil {
		writeError(w, err)
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: movie id must be a number", shared.ErrValidation))
		return
	}

	details, err := a.catalog.Details(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := struct {
		models.MovieDetails
		PosterURL   string   `json:"posterUrl"`
		BackdropURL string   `json:"backdropUrl"`
		TrailerURL  string   `json:"trailerUrl,omitempty"`
		Directors   []string `json:"directors"`
	}{
		MovieDetails: details,
		PosterURL:    a.images.Poster(details.PosterPath, services.PosterLarge),
		BackdropURL:  a.images.Backdrop(details.BackdropPath, ""),
		Directors:    details.Directors(),
	}
	if trailer, ok := details.Trailer(); ok {
		resp.TrailerURL = trailer.URL()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) genres(w http.ResponseWriter, r *http.Request) {
	if err := a.requireCatalog(); err != nil {
		writeError(w, err)
		return
	}

	genres, err := a.catalog.Genres(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

func (a *API) listWatchlists(w http.ResponseWriter, r *http.Request) {
	identity, err := a.requireUser()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.collections.ListByOwner(identity.ID))
}

func (a *API) publicWatchlists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.collections.ListPublic())
}

func (a *API) currentWatchlist(w http.ResponseWriter, r *http.Request) {
	c, ok := a.collections.Current()
	if !ok || !visible(c, a.session.State().Identity) {
		writeError(w, fmt.Errorf("%w: no current watchlist", shared.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) createWatchlist(w http.ResponseWriter, r *http.Request) {
	identity, err := a.requireUser()
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPublic    bool   `json:"isPublic"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	c, err := a.collections.Create(stores.NewCollection{
		OwnerID:     identity.ID,
		Name:        body.Name,
		Description: body.Description,
		IsPublic:    body.IsPublic,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) getWatchlist(w http.ResponseWriter, r *http.Request) {
	c, ok := a.collections.Find(r.PathValue("id"))
	st := a.session.State()
	if !ok || !visible(c, st.Identity) {
		writeError(w, fmt.Errorf("%w: watchlist %s", shared.ErrNotFound, r.PathValue("id")))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) updateWatchlist(w http.ResponseWriter, r *http.Request) {
	c, err := a.ownedCollection(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var patch stores.CollectionPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	if err := a.collections.Update(c.ID, patch); err != nil {
		writeError(w, err)
		return
	}

	updated, _ := a.collections.Find(c.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteWatchlist(w http.ResponseWriter, r *http.Request) {
	c, err := a.ownedCollection(r)
	if err != nil {
		writeError(w, err)
		return
	}
	a.collections.Delete(c.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) selectWatchlist(w http.ResponseWriter, r *http.Request) {
	c, err := a.ownedCollection(r)
	if err != nil {
		writeError(w, err)
		return
	}
	a.collections.SetCurrent(c.ID)
	writeJSON(w, http.StatusOK, c)
}

func (a *API) addMovie(w http.ResponseWriter, r *http.Request) {
	c, err := a.ownedCollection(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		MovieID int `json:"movieId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	movie, err := a.resolveMovie(r.Context(), body.MovieID)
	if err != nil {
		writeError(w, err)
		return
	}

	a.collections.AddMovie(c.ID, movie)
	updated, _ := a.collections.Find(c.ID)
	writeJSON(w, http.StatusOK, updated)
}

// resolveMovie fetches the full movie so stored entries carry genres and runtime.
func (a *API) resolveMovie(ctx context.Context, movieID int) (models.Movie, error) {
	if movieID <= 0 {
		return models.Movie{}, fmt.Errorf("%w: movieId is required", shared.ErrValidation)
	}
	if err := a.requireCatalog(); err != nil {
		return models.Movie{}, err
	}

	details, err := a.catalog.Details(ctx, movieID)
	if err != nil {
		return models.Movie{}, err
	}
	return details.Movie, nil
}

func (a *API) removeMovie(w http.ResponseWriter, r *http.Request) {
	c, err := a.ownedCollection(r)
	if err != nil {
		writeError(w, err)
		return
	}

	movieID, err := strconv.Atoi(r.PathValue("movieId"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: movie id must be a number", shared.ErrValidation))
		return
	}

	a.collections.RemoveMovie(c.ID, movieID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	identity, err := a.requireUser()
	if err != nil {
		writeError(w, err)
		return
	}
	if !identity.IsAdmin {
		writeError(w, fmt.Errorf("%w: admin only", shared.ErrForbidden))
		return
	}
	writeJSON(w, http.StatusOK, a.collections.Stats())
}
