package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
)

// MoviesHome prints the four category rows, loaded concurrently.
func (r *Runner) MoviesHome(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	feed, err := r.engine.HomeFeed(ctx, cmd.Int("page"))
	if err != nil {
		return fmt.Errorf("failed to load home feed: %w", err)
	}

	if cmd.Bool("json") {
		rows := make(map[models.Category]models.MoviePage, len(feed.Rows))
		for _, row := range feed.Rows {
			if row.Err == nil {
				rows[row.Category] = row.Page
			}
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	for i, row := range feed.Rows {
		if i > 0 {
			r.writePlain("\n")
		}
		if row.Err != nil {
			r.writePlainHeader(row.Label)
			r.writePlain("✗ %v\n", row.Err)
			continue
		}
		r.printPage(row.Label, row.Page)
	}
	return nil
}

// MoviesList prints one page of a category.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	category := models.ParseCategory(cmd.String("category"))
	r.logger.Debug("listing category", "category", category, "page", cmd.Int("page"))

	page, err := r.catalog.ListByCategory(ctx, category, cmd.Int("page"))
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", category, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}
	r.printPage(category.Label(), page)
	return nil
}

// MoviesShow prints a movie's details, optionally opening its page in a browser.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	id, err := movieIDArg(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	details, err := r.catalog.Details(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load movie %d: %w", id, err)
	}

	if cmd.Bool("open") {
		url := services.MovieURL(id)
		if err := r.openURL(url); err != nil {
			r.logger.Warn("failed to open browser", "url", url, "error", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(details, cmd.Bool("pretty"))
	}
	r.printDetails(details)
	return nil
}

// MoviesSearch prints one page of title matches.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	query := cmd.StringArg("query")
	page, err := r.catalog.Search(ctx, query, cmd.Int("page"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}
	r.printPage(fmt.Sprintf("Results for %q", strings.TrimSpace(query)), page)
	return nil
}

// MoviesGenres prints the genre list.
func (r *Runner) MoviesGenres(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	genres, err := r.catalog.Genres(ctx)
	if err != nil {
		return fmt.Errorf("failed to list genres: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(genres, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Genres (%d)", len(genres)))
	for _, g := range genres {
		r.writePlain("%6d  %s\n", g.ID, g.Name)
	}
	return nil
}

func movieIDArg(raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

func (r *Runner) printPage(title string, page models.MoviePage) {
	if page.TotalPages > 0 {
		title = fmt.Sprintf("%s (page %d/%d)", title, page.Page, page.TotalPages)
	}
	r.writePlainHeader(title)

	if len(page.Results) == 0 {
		r.writePlain("No movies found.\n")
		return
	}
	for _, m := range page.Results {
		r.writePlain("%8d  %s  ★ %.1f\n", m.ID, titleWithYear(m), m.VoteAverage)
	}
}

func (r *Runner) printDetails(d models.MovieDetails) {
	r.writePlainHeader(titleWithYear(d.Movie))
	if d.Tagline != "" {
		r.writePlain("%s\n\n", d.Tagline)
	}

	facts := []string{fmt.Sprintf("★ %.1f", d.VoteAverage)}
	if d.Runtime != nil {
		if rt := shared.FormatRuntime(*d.Runtime); rt != "" {
			facts = append(facts, rt)
		}
	}
	if names := d.GenreNames(); len(names) > 0 {
		facts = append(facts, strings.Join(names, ", "))
	}
	if d.Status != "" {
		facts = append(facts, d.Status)
	}
	r.writePlain("%s\n", strings.Join(facts, " • "))

	if d.Overview != "" {
		r.writePlain("\n%s\n", d.Overview)
	}
	if directors := d.Directors(); len(directors) > 0 {
		r.writePlain("\nDirected by: %s\n", strings.Join(directors, ", "))
	}
	if cast := d.TopCast(5); len(cast) > 0 {
		r.writePlain("Cast:\n")
		for _, c := range cast {
			if c.Character != "" {
				r.writePlain("  - %s as %s\n", c.Name, c.Character)
			} else {
				r.writePlain("  - %s\n", c.Name)
			}
		}
	}
	if trailer, ok := d.Trailer(); ok {
		r.writePlain("Trailer: %s\n", trailer.URL())
	}
	r.writePlain("Poster: %s\n", r.images.Poster(d.PosterPath, services.PosterLarge))
	r.writePlain("Link: %s\n", services.MovieURL(d.ID))

	if recs := d.Recommendations.Results; len(recs) > 0 {
		r.writePlain("\nMore like this:\n")
		for _, m := range recs[:min(len(recs), 5)] {
			r.writePlain("  - %s\n", titleWithYear(m))
		}
	}
}

func titleWithYear(m models.Movie) string {
	if year := shared.ReleaseYear(m.ReleaseDate); year != "" {
		return fmt.Sprintf("%s (%s)", m.Title, year)
	}
	return m.Title
}
