package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/tasks"
)

// WatchlistList prints the signed-in user's watchlists.
func (r *Runner) WatchlistList(ctx context.Context, cmd *cli.Command) error {
	userID, _, err := r.currentUser()
	if err != nil {
		return err
	}

	collections := r.collections.ListByOwner(userID)
	if cmd.Bool("json") {
		return r.writeJSON(collections, cmd.Bool("pretty"))
	}
	r.printCollections("My Watchlists", collections)
	return nil
}

// WatchlistPublic prints every public watchlist. No sign-in is needed.
func (r *Runner) WatchlistPublic(ctx context.Context, cmd *cli.Command) error {
	collections := r.collections.ListPublic()
	if cmd.Bool("json") {
		return r.writeJSON(collections, cmd.Bool("pretty"))
	}
	r.printCollections("Public Watchlists", collections)
	return nil
}

// WatchlistShow prints one watchlist in the --format encoding.
func (r *Runner) WatchlistShow(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	c, err := r.visibleCollection(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	return formatter.Write(r.output, c, format)
}

// WatchlistExport writes one watchlist to files.
func (r *Runner) WatchlistExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	c, err := r.visibleCollection(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	output := cmd.String("output")
	r.logger.Info("exporting watchlist", "id", c.ID, "format", format)

	var files []string
	switch format {
	case formatter.FormatCSV:
		output = exportDir(output, c.ID)
		result, err := formatter.WriteCSVExport(c, output)
		if err != nil {
			return err
		}
		files = []string{result.MoviesFile, result.MetadataFile}
	case formatter.FormatMarkdown:
		output = exportDir(output, c.ID)
		result, err := formatter.WriteMarkdownExport(c, output, nil)
		if err != nil {
			return err
		}
		files = result.Files
	case formatter.FormatText:
		path, err := formatter.WriteTextExport(c, output)
		if err != nil {
			return err
		}
		files = []string{path}
	default:
		path, err := formatter.WriteJSONExport(c, output)
		if err != nil {
			return err
		}
		files = []string{path}
	}

	r.writePlain("✓ Exported %s (%d movies)\n", c.Name, len(c.Movies))
	for _, f := range files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

// WatchlistExportAll exports every watchlist of the signed-in user with a worker pool and writes a manifest.
func (r *Runner) WatchlistExportAll(ctx context.Context, cmd *cli.Command) error {
	userID, _, err := r.currentUser()
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output-dir"),
		NumWorkers: cmd.Int("workers"),
		Covers:     cmd.Bool("covers"),
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ListCollections:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.FetchCover:
				r.writePlain("   %s\n", update.Message)
			case tasks.ExportCollection:
				r.writePlain("📝 %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.BulkExport(ctx, progressCh, userID, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	r.writePlain("Exported: %d/%d watchlists\n", result.SuccessfulExports, result.TotalCollections)

	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d watchlists:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %v\n", res.CollectionName, res.Error)
			}
		}
	}
	return nil
}

// WatchlistStats prints collection totals. Only admins may see them.
func (r *Runner) WatchlistStats(ctx context.Context, cmd *cli.Command) error {
	_, admin, err := r.currentUser()
	if err != nil {
		return err
	}
	if !admin {
		return fmt.Errorf("%w: admin only", shared.ErrForbidden)
	}

	stats := r.collections.Stats()
	if cmd.Bool("json") {
		return r.writeJSON(stats, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Watchlist Stats")
	r.writePlain("Watchlists: %d (%d public, %d private)\n", stats.Collections, stats.Public, stats.Private)
	r.writePlain("Entries: %d (%d distinct movies)\n", stats.Entries, stats.DistinctMovies)
	r.writePlain("Average per watchlist: %d\n", stats.AverageMovies)
	for owner, n := range stats.ByOwner {
		r.writePlain("  user %s: %d\n", owner, n)
	}
	if len(stats.TopGenres) > 0 {
		r.writePlain("Top genres: %v\n", stats.TopGenres)
	}
	return nil
}

// visibleCollection finds id for the current user. Another user's private watchlist reads as not found.
func (r *Runner) visibleCollection(id string) (models.Collection, error) {
	if id == "" {
		return models.Collection{}, fmt.Errorf("%w: watchlist id", shared.ErrMissingArgument)
	}

	c, ok := r.collections.Find(id)
	if !ok {
		return models.Collection{}, fmt.Errorf("%w: watchlist %s", shared.ErrNotFound, id)
	}
	if c.IsPublic {
		return c, nil
	}

	if r.session != nil {
		if identity, ok := r.session.Current(); ok && (identity.ID == c.OwnerID || identity.IsAdmin) {
			return c, nil
		}
	}
	return models.Collection{}, fmt.Errorf("%w: watchlist %s", shared.ErrNotFound, id)
}

func (r *Runner) printCollections(title string, collections []models.Collection) {
	r.writePlainHeader(fmt.Sprintf("%s (%d)", title, len(collections)))
	if len(collections) == 0 {
		r.writePlain("No watchlists.\n")
		return
	}

	current := ""
	if c, ok := r.collections.Current(); ok {
		current = c.ID
	}
	for _, c := range collections {
		marker := " "
		if c.ID == current {
			marker = "▸"
		}
		r.writePlain("%s %-6s %-24s %3d movies  %s\n", marker, c.ID, c.Name, len(c.Movies), shared.VisibilityString(c.IsPublic))
		if c.Description != "" {
			r.writePlain("         %s\n", c.Description)
		}
	}
}

func exportDir(output, id string) string {
	if output == "" {
		return id
	}
	return filepath.Clean(output)
}
