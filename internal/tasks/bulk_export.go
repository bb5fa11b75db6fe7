package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
)

// BulkExportOpts contains configuration for bulk watchlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format: json, csv, markdown, txt
	OutputDir  string           // Base output directory (default: watchlists_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 5, max: 10)
	RateLimit  float64          // Cover downloads per second (default: 5)
	Covers     bool             // Download the first poster as cover.jpg for markdown exports
}

type exportJob struct {
	step       int
	total      int
	collection models.Collection
}

// BulkExport writes every collection owned by ownerID to opts.OutputDir with a worker pool, then writes export_manifest.json.
//
// Per-collection failures are recorded in the result and do not stop the run.
func (e *Engine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ownerID string,
	opts BulkExportOpts,
) (*formatter.BulkExportResult, error) {
	if e.collections == nil {
		return nil, fmt.Errorf("%w: collection store not initialized", shared.ErrServiceUnavailable)
	}

	collections := e.collections.ListByOwner(ownerID)
	if len(collections) == 0 {
		return nil, fmt.Errorf("%w: no watchlists for user %s", shared.ErrNotFound, ownerID)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("watchlists_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(collections)
	result := &formatter.BulkExportResult{
		OwnerID:          ownerID,
		TotalCollections: total,
		OutputDirectory:  opts.OutputDir,
		Results:          make([]formatter.ExportResult, 0, total),
	}
	e.sendProgress(prog, listingCollectionsUpdate(ownerID, total))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, total)
	results := make(chan formatter.ExportResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, limiter, prog, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, c := range collections {
			select {
			case <-ctx.Done():
				return
			case jobs <- exportJob{step: i + 1, total: total, collection: c}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, total, res.CollectionName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, total, res.CollectionName, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker exports collections from the jobs channel until it closes or ctx is done.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	prog chan<- ProgressUpdate,
	jobs <-chan exportJob,
	results chan<- formatter.ExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		e.sendProgress(prog, exportingCollectionUpdate(job.step, job.total, job.collection.Name))
		results <- e.exportCollection(ctx, limiter, prog, job, opts)
	}
}

// exportCollection writes a single collection in opts.Format.
func (e *Engine) exportCollection(
	ctx context.Context,
	limiter *rate.Limiter,
	prog chan<- ProgressUpdate,
	j exportJob,
	opts BulkExportOpts,
) formatter.ExportResult {
	c := j.collection
	result := formatter.ExportResult{
		CollectionID:   c.ID,
		CollectionName: c.Name,
		Files:          []string{},
	}

	switch opts.Format {
	case formatter.FormatCSV:
		csvRes, err := formatter.WriteCSVExport(c, filepath.Join(opts.OutputDir, c.ID))
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.MoviesFile, csvRes.MetadataFile}

	case formatter.FormatMarkdown:
		var cover []byte
		if opts.Covers {
			e.sendProgress(prog, fetchingCoverUpdate(j.step, j.total, c.Name))
			cover = e.fetchCover(ctx, limiter, c)
		}

		mdRes, err := formatter.WriteMarkdownExport(c, filepath.Join(opts.OutputDir, c.ID), cover)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files

	case formatter.FormatText:
		path, err := formatter.WriteTextExport(c, filepath.Join(opts.OutputDir, c.ID+"_movies.txt"))
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	default:
		path, err := formatter.WriteJSONExport(c, filepath.Join(opts.OutputDir, c.ID+".json"))
		if err != nil {
			result.Error = fmt.Errorf("JSON export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}

// fetchCover downloads the first available poster. Failures are logged and yield no cover.
func (e *Engine) fetchCover(ctx context.Context, limiter *rate.Limiter, c models.Collection) []byte {
	var posterPath string
	for _, m := range c.Movies {
		if m.PosterPath != "" {
			posterPath = m.PosterPath
			break
		}
	}
	if posterPath == "" {
		return nil
	}

	if err := limiter.Wait(ctx); err != nil {
		return nil
	}

	data, err := formatter.DownloadImage(ctx, e.httpClient, e.images.Poster(posterPath, services.PosterLarge))
	if err != nil {
		e.logger.Warn("failed to download cover", "collection", c.ID, "error", err)
		return nil
	}
	return data
}
